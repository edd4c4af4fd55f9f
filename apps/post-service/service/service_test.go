package service

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	moderationmodel "sportshub-social/apps/moderation-service/model"
	"sportshub-social/apps/post-service/model"
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
	s.calls = append(s.calls, "ratelimit")
	if s.allowRate {
		return &moderationmodel.RateLimitDecision{Allowed: true, Remaining: 9}
	}
	return &moderationmodel.RateLimitDecision{
		Allowed: false,
		Message: moderationmodel.ReasonRateLimitedHint,
	}
}

func (s *stubModeration) GetRemainingQuota(ctx context.Context, userID, actionType string) *moderationmodel.RemainingQuota {
	return &moderationmodel.RemainingQuota{Remaining: 10, Limit: 10}
}

// stubPostDAO 进程内帖子存储
type stubPostDAO struct {
	posts   map[int64]*model.Post
	created []int64
}

func newStubPostDAO() *stubPostDAO {
	return &stubPostDAO{posts: make(map[int64]*model.Post)}
}

func (d *stubPostDAO) CreatePost(ctx context.Context, post *model.Post) error {
	d.posts[post.ID] = post
	d.created = append(d.created, post.ID)
	return nil
}

func (d *stubPostDAO) GetPost(ctx context.Context, postID int64) (*model.Post, error) {
	post, ok := d.posts[postID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return post, nil
}

func (d *stubPostDAO) UpdatePost(ctx context.Context, post *model.Post) error {
	d.posts[post.ID] = post
	return nil
}

func (d *stubPostDAO) DeletePost(ctx context.Context, postID int64) error {
	delete(d.posts, postID)
	return nil
}

func (d *stubPostDAO) ListPosts(ctx context.Context, params *model.ListPostsParams) ([]*model.Post, int64, error) {
	var posts []*model.Post
	for _, post := range d.posts {
		posts = append(posts, post)
	}
	return posts, int64(len(posts)), nil
}

func (d *stubPostDAO) GetAuthorStats(ctx context.Context, authorID int64) (*model.AuthorStats, error) {
	stats := &model.AuthorStats{AuthorID: authorID}
	for _, post := range d.posts {
		if post.AuthorID == authorID {
			stats.TotalPosts++
		}
	}
	return stats, nil
}

func (d *stubPostDAO) UpdateCommentCount(ctx context.Context, postID int64, delta int64) error {
	return nil
}

func newTestService(postDAO *stubPostDAO, moderation *stubModeration) *Service {
	idGen, err := snowflake.NewSnowflake(1)
	if err != nil {
		panic(err)
	}
	return NewService(postDAO, nil, nil, moderation, idGen, logger.GetLogger())
}

func validParams() *model.CreatePostParams {
	return &model.CreatePostParams{
		AuthorID:   1001,
		AuthorName: "alice",
		Title:      "Meciul de aseară",
		Content:    "A fost un meci excelent!",
		MediaType:  model.MediaTypeText,
	}
}

// TestCreatePostWritePath 写路径按限流->审核->落库的顺序执行
func TestCreatePostWritePath(t *testing.T) {
	postDAO := newStubPostDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(postDAO, moderation)

	post, err := svc.CreatePost(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.ID == 0 {
		t.Error("expected generated post ID")
	}

	if len(moderation.calls) != 2 || moderation.calls[0] != "ratelimit" || moderation.calls[1] != "moderate" {
		t.Errorf("unexpected call order: %v", moderation.calls)
	}
	if len(postDAO.created) != 1 {
		t.Errorf("created %d posts, want 1", len(postDAO.created))
	}
}

// TestCreatePostRateLimited 超限时直接拒绝，不再审核也不落库
func TestCreatePostRateLimited(t *testing.T) {
	postDAO := newStubPostDAO()
	moderation := &stubModeration{allowRate: false, approve: true}
	svc := newTestService(postDAO, moderation)

	_, err := svc.CreatePost(context.Background(), validParams())
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	if err.Error() != moderationmodel.ReasonRateLimitedHint {
		t.Errorf("error = %q, want rate limit hint", err.Error())
	}

	if len(moderation.calls) != 1 || moderation.calls[0] != "ratelimit" {
		t.Errorf("unexpected calls: %v", moderation.calls)
	}
	if len(postDAO.created) != 0 {
		t.Error("post should not be persisted when rate limited")
	}
}

// TestCreatePostContentRejected 审核拒绝时不落库，且已消耗的配额不返还
func TestCreatePostContentRejected(t *testing.T) {
	postDAO := newStubPostDAO()
	moderation := &stubModeration{allowRate: true, approve: false, reason: moderationmodel.ReasonRomanianMatch}
	svc := newTestService(postDAO, moderation)

	_, err := svc.CreatePost(context.Background(), validParams())
	if err == nil {
		t.Fatal("expected moderation error")
	}
	if err.Error() != moderationmodel.ReasonRomanianMatch {
		t.Errorf("error = %q, want moderation reason", err.Error())
	}

	// 限流先于审核被调用，审核拒绝后也没有任何返还配额的调用
	if len(moderation.calls) != 2 || moderation.calls[0] != "ratelimit" || moderation.calls[1] != "moderate" {
		t.Errorf("unexpected calls: %v", moderation.calls)
	}
	if len(postDAO.created) != 0 {
		t.Error("post should not be persisted when content rejected")
	}
}

// TestCreatePostValidation 标题和媒体类型本地校验
func TestCreatePostValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CreatePostParams)
	}{
		{"作者ID缺失", func(p *model.CreatePostParams) { p.AuthorID = 0 }},
		{"标题过短", func(p *model.CreatePostParams) { p.Title = "abc" }},
		{"标题过长", func(p *model.CreatePostParams) { p.Title = strings.Repeat("a", 201) }},
		{"媒体类型无效", func(p *model.CreatePostParams) { p.MediaType = "gif" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postDAO := newStubPostDAO()
			moderation := &stubModeration{allowRate: true, approve: true}
			svc := newTestService(postDAO, moderation)

			params := validParams()
			tt.mutate(params)

			if _, err := svc.CreatePost(context.Background(), params); err == nil {
				t.Fatal("expected validation error")
			}
			// 本地校验失败时不应消耗配额
			if len(moderation.calls) != 0 {
				t.Errorf("unexpected moderation calls: %v", moderation.calls)
			}
		})
	}
}

// TestUpdatePostPermission 只有作者本人可以修改
func TestUpdatePostPermission(t *testing.T) {
	postDAO := newStubPostDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(postDAO, moderation)

	post, err := svc.CreatePost(context.Background(), validParams())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err = svc.UpdatePost(context.Background(), &model.UpdatePostParams{
		PostID:     post.ID,
		OperatorID: 9999,
		Title:      "Titlu modificat",
		Content:    "alt conținut",
	})
	if err == nil {
		t.Fatal("expected permission error")
	}

	_, err = svc.UpdatePost(context.Background(), &model.UpdatePostParams{
		PostID:     post.ID,
		OperatorID: post.AuthorID,
		Title:      "Titlu modificat",
		Content:    "alt conținut",
	})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
}

// TestUpdatePostRateLimited 编辑同样消耗发帖配额，超限时拒绝且不落库
func TestUpdatePostRateLimited(t *testing.T) {
	postDAO := newStubPostDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(postDAO, moderation)

	post, err := svc.CreatePost(context.Background(), validParams())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	moderation.allowRate = false
	moderation.calls = nil

	_, err = svc.UpdatePost(context.Background(), &model.UpdatePostParams{
		PostID:     post.ID,
		OperatorID: post.AuthorID,
		Title:      "Titlu modificat",
		Content:    "alt conținut",
	})
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	if err.Error() != moderationmodel.ReasonRateLimitedHint {
		t.Errorf("error = %q, want rate limit hint", err.Error())
	}

	// 限流拒绝后不应再走审核
	if len(moderation.calls) != 1 || moderation.calls[0] != "ratelimit" {
		t.Errorf("unexpected calls: %v", moderation.calls)
	}
	stored, _ := postDAO.GetPost(context.Background(), post.ID)
	if stored.Title != "Meciul de aseară" {
		t.Errorf("title changed to %q while rate limited", stored.Title)
	}
}

// TestDeletePostPermission 只有作者本人可以删除
func TestDeletePostPermission(t *testing.T) {
	postDAO := newStubPostDAO()
	moderation := &stubModeration{allowRate: true, approve: true}
	svc := newTestService(postDAO, moderation)

	post, err := svc.CreatePost(context.Background(), validParams())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := svc.DeletePost(context.Background(), post.ID, 9999); err == nil {
		t.Fatal("expected permission error")
	}
	if err := svc.DeletePost(context.Background(), post.ID, post.AuthorID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := svc.GetPost(context.Background(), post.ID); err == nil {
		t.Error("post should be gone after delete")
	}
}
