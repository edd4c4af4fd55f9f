package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"sportshub-social/apps/comment-service/model"
	moderationmodel "sportshub-social/apps/moderation-service/model"
	"sportshub-social/pkg/logger"
	"sportshub-social/pkg/snowflake"
)

// stubModeration 可编排的审核服务客户端
type stubModeration struct {
	allowRate bool
	approve   bool
	reason    string
	calls     []string
}

func (s *stubModeration) Moderate(ctx context.Context, content string, maxLevel moderationmodel.ModerationLevel) *moderationmodel.ModerationResult {
	s.calls = append(s.calls, "moderate")
	if s.approve {
		return &moderationmodel.ModerationResult{
			Approved:        true,
			Level:           moderationmodel.LevelLocalFilter,
			ConfidenceScore: moderationmodel.ConfidenceFinalApprove,
		}
	}
	return &moderationmodel.ModerationResult{
		Approved:        false,
		Reason:          s.reason,
		Level:           moderationmodel.LevelLocalFilter,
		ConfidenceScore: moderationmodel.ConfidenceLocalReject,
	}
}

func (s *stubModeration) CheckRateLimit(ctx context.Context, userID, actionType string) *moderationmodel.RateLimitDecision {
	s.calls = append(s.calls, "ratelimit:"+actionType)
	if s.allowRate {
		return &moderationmodel.RateLimitDecision{Allowed: true, Remaining: 29}
	}
	return &moderationmodel.RateLimitDecision{
		Allowed: false,
		Message: moderationmodel.ReasonRateLimitedHint,
	}
}

func (s *stubModeration) GetRemainingQuota(ctx context.Context, userID, actionType string) *moderationmodel.RemainingQuota {
	return &moderationmodel.RemainingQuota{Remaining: 30, Limit: 30}
}

// stubCommentDAO 进程内评论存储
type stubCommentDAO struct {
	comments map[int64]*model.Comment
	likes    map[string]bool
}

func newStubCommentDAO() *stubCommentDAO {
	return &stubCommentDAO{
		comments: make(map[int64]*model.Comment),
		likes:    make(map[string]bool),
	}
}

func likeKey(commentID, userID int64) string {
	return fmt.Sprintf("%d:%d", commentID, userID)
}

func (d *stubCommentDAO) CreateComment(ctx context.Context, comment *model.Comment) error {
	d.comments[comment.ID] = comment
	return nil
}

func (d *stubCommentDAO) GetComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	comment, ok := d.comments[commentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return comment, nil
}

func (d *stubCommentDAO) UpdateComment(ctx context.Context, comment *model.Comment) error {
	d.comments[comment.ID] = comment
	return nil
}

func (d *stubCommentDAO) DeleteComment(ctx context.Context, commentID int64) error {
	delete(d.comments, commentID)
	return nil
}

func (d *stubCommentDAO) ListComments(ctx context.Context, params *model.ListCommentsParams) ([]*model.Comment, int64, error) {
	var comments []*model.Comment
	for _, comment := range d.comments {
		if comment.PostID == params.PostID {
			comments = append(comments, comment)
		}
	}
	return comments, int64(len(comments)), nil
}

func (d *stubCommentDAO) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	for _, comment := range d.comments {
		if comment.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (d *stubCommentDAO) AddLike(ctx context.Context, commentID, userID int64) error {
	key := likeKey(commentID, userID)
	if d.likes[key] {
		return fmt.Errorf("已点赞过该评论")
	}
	d.likes[key] = true
	d.comments[commentID].LikeCount++
	return nil
}

func (d *stubCommentDAO) RemoveLike(ctx context.Context, commentID, userID int64) error {
	key := likeKey(commentID, userID)
	if !d.likes[key] {
		return fmt.Errorf("未点赞过该评论")
	}
	delete(d.likes, key)
	d.comments[commentID].LikeCount--
	return nil
}

func (d *stubCommentDAO) IsLiked(ctx context.Context, commentID, userID int64) (bool, error) {
	return d.likes[likeKey(commentID, userID)], nil
}

func newTestService(commentDAO *stubCommentDAO, moderation *stubModeration) *Service {
	idGen, err := snowflake.NewSnowflake(1)
	if err != nil {
		panic(err)
	}
	return NewService(commentDAO, nil, moderation, idGen, logger.GetLogger())
}

func validParams() *model.CreateCommentParams {
	return &model.CreateCommentParams{
		PostID:   5001,
		UserID:   1001,
		UserName: "alice",
		Content:  "Bravo, meci frumos!",
	}
}

// TestCreateCommentWritePath 写路径按限流->审核->落库的顺序执行
func TestCreateCommentWritePath(t *testing.T) {
	commentDAO := newStubCommentDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(commentDAO, moderation)

	comment, err := svc.CreateComment(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comment.ID == 0 {
		t.Error("expected generated comment ID")
	}

	want := []string{"ratelimit:" + model.ActionTypeComment, "moderate"}
	if len(moderation.calls) != 2 || moderation.calls[0] != want[0] || moderation.calls[1] != want[1] {
		t.Errorf("unexpected call order: %v", moderation.calls)
	}
	if len(commentDAO.comments) != 1 {
		t.Errorf("stored %d comments, want 1", len(commentDAO.comments))
	}
}

// TestCreateCommentRateLimited 超限时直接拒绝，不再审核也不落库
func TestCreateCommentRateLimited(t *testing.T) {
	commentDAO := newStubCommentDAO()
	moderation := &stubModeration{allowRate: false, approve: true}
	svc := newTestService(commentDAO, moderation)

	_, err := svc.CreateComment(context.Background(), validParams())
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	if len(moderation.calls) != 1 {
		t.Errorf("unexpected calls: %v", moderation.calls)
	}
	if len(commentDAO.comments) != 0 {
		t.Error("comment should not be persisted when rate limited")
	}
}

// TestCreateCommentContentRejected 审核拒绝时不落库，已消耗的配额不返还
func TestCreateCommentContentRejected(t *testing.T) {
	commentDAO := newStubCommentDAO()
	moderation := &stubModeration{allowRate: true, approve: false, reason: moderationmodel.ReasonEnglishMatch}
	svc := newTestService(commentDAO, moderation)

	_, err := svc.CreateComment(context.Background(), validParams())
	if err == nil {
		t.Fatal("expected moderation error")
	}
	if err.Error() != moderationmodel.ReasonEnglishMatch {
		t.Errorf("error = %q, want moderation reason", err.Error())
	}
	if len(moderation.calls) != 2 {
		t.Errorf("unexpected calls: %v", moderation.calls)
	}
	if len(commentDAO.comments) != 0 {
		t.Error("comment should not be persisted when content rejected")
	}
}

// TestCreateCommentTooLong 超长评论在本地校验阶段被拒，不消耗配额
func TestCreateCommentTooLong(t *testing.T) {
	commentDAO := newStubCommentDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(commentDAO, moderation)

	params := validParams()
	params.Content = strings.Repeat("a", model.ContentMaxLength+1)

	if _, err := svc.CreateComment(context.Background(), params); err == nil {
		t.Fatal("expected length error")
	}
	if len(moderation.calls) != 0 {
		t.Errorf("unexpected moderation calls: %v", moderation.calls)
	}
}

// TestLikeUnlikeComment 点赞幂等性与取消点赞
func TestLikeUnlikeComment(t *testing.T) {
	commentDAO := newStubCommentDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(commentDAO, moderation)

	comment, err := svc.CreateComment(context.Background(), validParams())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := svc.LikeComment(context.Background(), comment.ID, 2002); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	if err := svc.LikeComment(context.Background(), comment.ID, 2002); err == nil {
		t.Error("expected duplicate like error")
	}

	liked, err := svc.IsCommentLiked(context.Background(), comment.ID, 2002)
	if err != nil || !liked {
		t.Errorf("IsCommentLiked = (%v, %v), want (true, nil)", liked, err)
	}

	if err := svc.UnlikeComment(context.Background(), comment.ID, 2002); err != nil {
		t.Fatalf("unlike failed: %v", err)
	}
	if err := svc.UnlikeComment(context.Background(), comment.ID, 2002); err == nil {
		t.Error("expected error when unliking without a like")
	}
}

// TestUpdateCommentPermission 只有作者本人可以修改，且修改内容重新过审
func TestUpdateCommentPermission(t *testing.T) {
	commentDAO := newStubCommentDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(commentDAO, moderation)

	comment, err := svc.CreateComment(context.Background(), validParams())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	moderation.calls = nil

	_, err = svc.UpdateComment(context.Background(), &model.UpdateCommentParams{
		CommentID:  comment.ID,
		OperatorID: 9999,
		Content:    "alt comentariu",
	})
	if err == nil {
		t.Fatal("expected permission error")
	}
	if len(moderation.calls) != 0 {
		t.Error("moderation should not run when permission denied")
	}

	updated, err := svc.UpdateComment(context.Background(), &model.UpdateCommentParams{
		CommentID:  comment.ID,
		OperatorID: comment.UserID,
		Content:    "alt comentariu",
	})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Content != "alt comentariu" {
		t.Errorf("content = %q", updated.Content)
	}
	want := []string{"ratelimit:" + model.ActionTypeComment, "moderate"}
	if len(moderation.calls) != 2 || moderation.calls[0] != want[0] || moderation.calls[1] != want[1] {
		t.Errorf("unexpected call order: %v", moderation.calls)
	}
}

// TestUpdateCommentRateLimited 编辑同样消耗评论配额，超限时拒绝且不落库
func TestUpdateCommentRateLimited(t *testing.T) {
	commentDAO := newStubCommentDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(commentDAO, moderation)

	comment, err := svc.CreateComment(context.Background(), validParams())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	moderation.allowRate = false
	moderation.calls = nil

	_, err = svc.UpdateComment(context.Background(), &model.UpdateCommentParams{
		CommentID:  comment.ID,
		OperatorID: comment.UserID,
		Content:    "alt comentariu",
	})
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	if err.Error() != moderationmodel.ReasonRateLimitedHint {
		t.Errorf("error = %q, want rate limit hint", err.Error())
	}

	// 限流拒绝后不应再走审核
	if len(moderation.calls) != 1 || moderation.calls[0] != "ratelimit:"+model.ActionTypeComment {
		t.Errorf("unexpected calls: %v", moderation.calls)
	}
	stored, _ := commentDAO.GetComment(context.Background(), comment.ID)
	if stored.Content != "Bravo, meci frumos!" {
		t.Errorf("content changed to %q while rate limited", stored.Content)
	}
}
