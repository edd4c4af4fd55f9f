package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sportshub-social/apps/comment-service/dao"
	"sportshub-social/apps/comment-service/model"
	moderationclient "sportshub-social/apps/moderation-service/client"
	moderationmodel "sportshub-social/apps/moderation-service/model"
	tracecontext "sportshub-social/pkg/context"
	"sportshub-social/pkg/kafka"
	"sportshub-social/pkg/logger"
	"sportshub-social/pkg/snowflake"
	"sportshub-social/pkg/telemetry"
)

// Service 评论服务
type Service struct {
	dao        dao.CommentDAO
	kafka      *kafka.Producer
	moderation moderationclient.ModerationClient
	idGen      *snowflake.Snowflake
	logger     logger.Logger
}

// NewService 创建评论服务实例
func NewService(commentDAO dao.CommentDAO, kafka *kafka.Producer,
	moderation moderationclient.ModerationClient, idGen *snowflake.Snowflake, log logger.Logger) *Service {
	return &Service{
		dao:        commentDAO,
		kafka:      kafka,
		moderation: moderation,
		idGen:      idGen,
		logger:     log,
	}
}

// CreateComment 创建评论
// 写路径顺序：限流 -> 审核 -> 落库 -> 事件，限流在审核前消耗且拒绝后不返还
func (s *Service) CreateComment(ctx context.Context, params *model.CreateCommentParams) (*model.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.CreateComment")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("comment.post_id", params.PostID),
		attribute.Int64("comment.user_id", params.UserID),
	)

	ctx = tracecontext.WithUserID(ctx, params.UserID)
	ctx = tracecontext.WithPostID(ctx, params.PostID)

	if params.PostID <= 0 {
		span.SetStatus(codes.Error, "invalid post ID")
		return nil, fmt.Errorf("帖子ID无效")
	}
	if params.UserID <= 0 {
		span.SetStatus(codes.Error, "invalid user ID")
		return nil, fmt.Errorf("用户ID无效")
	}
	if len(params.Content) > model.ContentMaxLength {
		span.SetStatus(codes.Error, "content too long")
		return nil, fmt.Errorf("评论不能超过%d个字符", model.ContentMaxLength)
	}

	// 限流检查，消耗一次配额
	decision := s.moderation.CheckRateLimit(ctx, strconv.FormatInt(params.UserID, 10), model.ActionTypeComment)
	if !decision.Allowed {
		span.SetStatus(codes.Error, "rate limited")
		return nil, fmt.Errorf("%s", decision.Message)
	}

	// 内容审核
	result := s.moderation.Moderate(ctx, params.Content, moderationmodel.LevelAIAnalysis)
	if !result.Approved {
		span.SetAttributes(attribute.String("moderation.reason", result.Reason))
		span.SetStatus(codes.Error, "content rejected")
		return nil, fmt.Errorf("%s", result.Reason)
	}

	comment := &model.Comment{
		ID:        s.idGen.MustNextID(),
		PostID:    params.PostID,
		UserID:    params.UserID,
		UserName:  params.UserName,
		Content:   strings.TrimSpace(params.Content),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.dao.CreateComment(ctx, comment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create comment")
		return nil, fmt.Errorf("创建评论失败: %v", err)
	}

	ctx = tracecontext.WithCommentID(ctx, comment.ID)
	span.SetAttributes(attribute.Int64("comment.id", comment.ID))

	s.publishEvent(ctx, model.EventCommentCreated, comment)

	s.logger.Info(ctx, "Comment created",
		logger.F("commentID", comment.ID),
		logger.F("postID", comment.PostID),
		logger.F("userID", comment.UserID))

	return comment, nil
}

// GetComment 获取评论
func (s *Service) GetComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.GetComment")
	defer span.End()

	span.SetAttributes(attribute.Int64("comment.id", commentID))

	comment, err := s.dao.GetComment(ctx, commentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "comment not found")
		return nil, fmt.Errorf("评论不存在")
	}
	return comment, nil
}

// ListComments 查询评论列表
func (s *Service) ListComments(ctx context.Context, params *model.ListCommentsParams) ([]*model.Comment, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.ListComments")
	defer span.End()

	comments, total, err := s.dao.ListComments(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list comments")
		return nil, 0, fmt.Errorf("查询评论列表失败: %v", err)
	}

	span.SetAttributes(attribute.Int64("comment.total", total))
	return comments, total, nil
}

// UpdateComment 更新评论，仅作者本人可操作，修改后的内容重新过审
func (s *Service) UpdateComment(ctx context.Context, params *model.UpdateCommentParams) (*model.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.UpdateComment")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("comment.id", params.CommentID),
		attribute.Int64("comment.operator_id", params.OperatorID),
	)

	comment, err := s.dao.GetComment(ctx, params.CommentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "comment not found")
		return nil, fmt.Errorf("评论不存在")
	}

	if comment.UserID != params.OperatorID {
		span.SetStatus(codes.Error, "permission denied")
		return nil, fmt.Errorf("无权修改该评论")
	}

	if len(params.Content) > model.ContentMaxLength {
		span.SetStatus(codes.Error, "content too long")
		return nil, fmt.Errorf("评论不能超过%d个字符", model.ContentMaxLength)
	}

	// 编辑和创建共用同一份评论配额
	decision := s.moderation.CheckRateLimit(ctx, strconv.FormatInt(params.OperatorID, 10), model.ActionTypeComment)
	if !decision.Allowed {
		span.SetStatus(codes.Error, "rate limited")
		return nil, fmt.Errorf("%s", decision.Message)
	}

	result := s.moderation.Moderate(ctx, params.Content, moderationmodel.LevelAIAnalysis)
	if !result.Approved {
		span.SetAttributes(attribute.String("moderation.reason", result.Reason))
		span.SetStatus(codes.Error, "content rejected")
		return nil, fmt.Errorf("%s", result.Reason)
	}

	comment.Content = strings.TrimSpace(params.Content)
	comment.UpdatedAt = time.Now()

	if err := s.dao.UpdateComment(ctx, comment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update comment")
		return nil, fmt.Errorf("更新评论失败: %v", err)
	}

	return comment, nil
}

// DeleteComment 删除评论，仅作者本人可操作
func (s *Service) DeleteComment(ctx context.Context, commentID, operatorID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.DeleteComment")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("comment.id", commentID),
		attribute.Int64("comment.operator_id", operatorID),
	)

	comment, err := s.dao.GetComment(ctx, commentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "comment not found")
		return fmt.Errorf("评论不存在")
	}

	if comment.UserID != operatorID {
		span.SetStatus(codes.Error, "permission denied")
		return fmt.Errorf("无权删除该评论")
	}

	if err := s.dao.DeleteComment(ctx, commentID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete comment")
		return fmt.Errorf("删除评论失败: %v", err)
	}

	s.publishEvent(ctx, model.EventCommentDeleted, comment)

	return nil
}

// LikeComment 点赞评论
func (s *Service) LikeComment(ctx context.Context, commentID, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.LikeComment")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("comment.id", commentID),
		attribute.Int64("comment.user_id", userID),
	)

	comment, err := s.dao.GetComment(ctx, commentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "comment not found")
		return fmt.Errorf("评论不存在")
	}

	if err := s.dao.AddLike(ctx, commentID, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to like comment")
		return err
	}

	s.publishEvent(ctx, model.EventCommentLiked, comment)

	return nil
}

// UnlikeComment 取消点赞
func (s *Service) UnlikeComment(ctx context.Context, commentID, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "comment.service.UnlikeComment")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("comment.id", commentID),
		attribute.Int64("comment.user_id", userID),
	)

	comment, err := s.dao.GetComment(ctx, commentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "comment not found")
		return fmt.Errorf("评论不存在")
	}

	if err := s.dao.RemoveLike(ctx, commentID, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unlike comment")
		return err
	}

	s.publishEvent(ctx, model.EventCommentUnliked, comment)

	return nil
}

// IsCommentLiked 查询用户是否点赞过评论
func (s *Service) IsCommentLiked(ctx context.Context, commentID, userID int64) (bool, error) {
	liked, err := s.dao.IsLiked(ctx, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("查询点赞状态失败: %v", err)
	}
	return liked, nil
}

// publishEvent 发送评论变更事件
func (s *Service) publishEvent(ctx context.Context, eventType string, comment *model.Comment) {
	if s.kafka == nil {
		return
	}

	event := &model.CommentEvent{
		Type:       eventType,
		CommentID:  comment.ID,
		PostID:     comment.PostID,
		UserID:     comment.UserID,
		OccurredAt: time.Now().Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal comment event", logger.F("error", err.Error()))
		return
	}

	key := []byte(strconv.FormatInt(comment.PostID, 10))
	if err := s.kafka.SendMessage(eventType, key, payload); err != nil {
		s.logger.Error(ctx, "Failed to publish comment event",
			logger.F("type", eventType),
			logger.F("error", err.Error()))
	}
}
