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

	moderationclient "sportshub-social/apps/moderation-service/client"
	moderationmodel "sportshub-social/apps/moderation-service/model"
	"sportshub-social/apps/post-service/dao"
	"sportshub-social/apps/post-service/model"
	tracecontext "sportshub-social/pkg/context"
	"sportshub-social/pkg/kafka"
	"sportshub-social/pkg/logger"
	"sportshub-social/pkg/redis"
	"sportshub-social/pkg/snowflake"
	"sportshub-social/pkg/telemetry"
)

// Service 帖子服务
type Service struct {
	dao        dao.PostDAO
	redis      *redis.RedisClient
	kafka      *kafka.Producer
	moderation moderationclient.ModerationClient
	idGen      *snowflake.Snowflake
	logger     logger.Logger
}

// NewService 创建帖子服务实例
func NewService(postDAO dao.PostDAO, redis *redis.RedisClient, kafka *kafka.Producer,
	moderation moderationclient.ModerationClient, idGen *snowflake.Snowflake, log logger.Logger) *Service {
	return &Service{
		dao:        postDAO,
		redis:      redis,
		kafka:      kafka,
		moderation: moderation,
		idGen:      idGen,
		logger:     log,
	}
}

// CreatePost 创建帖子
// 写路径顺序：限流 -> 审核 -> 落库 -> 事件，限流在审核前消耗且拒绝后不返还
func (s *Service) CreatePost(ctx context.Context, params *model.CreatePostParams) (*model.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "post.service.CreatePost")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("post.author_id", params.AuthorID),
		attribute.String("post.media_type", params.MediaType),
	)

	ctx = tracecontext.WithUserID(ctx, params.AuthorID)

	if params.AuthorID <= 0 {
		span.SetStatus(codes.Error, "invalid author ID")
		return nil, fmt.Errorf("作者ID无效")
	}
	if err := validateTitle(params.Title); err != nil {
		span.SetStatus(codes.Error, "invalid title")
		return nil, err
	}
	mediaType := params.MediaType
	if mediaType == "" {
		mediaType = model.MediaTypeText
	}
	if !model.ValidateMediaType(mediaType) {
		span.SetStatus(codes.Error, "invalid media type")
		return nil, fmt.Errorf("媒体类型无效: %s", params.MediaType)
	}

	// 限流检查，消耗一次配额
	decision := s.moderation.CheckRateLimit(ctx, strconv.FormatInt(params.AuthorID, 10), model.ActionTypePost)
	if !decision.Allowed {
		span.SetStatus(codes.Error, "rate limited")
		return nil, fmt.Errorf("%s", decision.Message)
	}

	// 内容审核，标题和正文一并检查
	result := s.moderation.Moderate(ctx, params.Title+"\n"+params.Content, moderationmodel.LevelAIAnalysis)
	if !result.Approved {
		span.SetAttributes(attribute.String("moderation.reason", result.Reason))
		span.SetStatus(codes.Error, "content rejected")
		return nil, fmt.Errorf("%s", result.Reason)
	}

	post := &model.Post{
		ID:         s.idGen.MustNextID(),
		AuthorID:   params.AuthorID,
		AuthorName: params.AuthorName,
		Title:      strings.TrimSpace(params.Title),
		Content:    params.Content,
		MediaType:  mediaType,
		MediaURL:   params.MediaURL,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.dao.CreatePost(ctx, post); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create post")
		return nil, fmt.Errorf("创建帖子失败: %v", err)
	}

	ctx = tracecontext.WithPostID(ctx, post.ID)
	span.SetAttributes(attribute.Int64("post.id", post.ID))

	s.publishEvent(ctx, model.EventPostCreated, post)
	s.invalidateStatsCache(ctx, post.AuthorID)

	s.logger.Info(ctx, "Post created",
		logger.F("postID", post.ID),
		logger.F("authorID", post.AuthorID))

	return post, nil
}

// GetPost 获取帖子
func (s *Service) GetPost(ctx context.Context, postID int64) (*model.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "post.service.GetPost")
	defer span.End()

	span.SetAttributes(attribute.Int64("post.id", postID))

	post, err := s.dao.GetPost(ctx, postID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "post not found")
		return nil, fmt.Errorf("帖子不存在")
	}
	return post, nil
}

// ListPosts 查询帖子列表
func (s *Service) ListPosts(ctx context.Context, params *model.ListPostsParams) ([]*model.Post, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "post.service.ListPosts")
	defer span.End()

	posts, total, err := s.dao.ListPosts(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list posts")
		return nil, 0, fmt.Errorf("查询帖子列表失败: %v", err)
	}

	span.SetAttributes(attribute.Int64("post.total", total))
	return posts, total, nil
}

// UpdatePost 更新帖子，仅作者本人可操作，修改后的内容重新过审
func (s *Service) UpdatePost(ctx context.Context, params *model.UpdatePostParams) (*model.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "post.service.UpdatePost")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("post.id", params.PostID),
		attribute.Int64("post.operator_id", params.OperatorID),
	)

	post, err := s.dao.GetPost(ctx, params.PostID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "post not found")
		return nil, fmt.Errorf("帖子不存在")
	}

	if post.AuthorID != params.OperatorID {
		span.SetStatus(codes.Error, "permission denied")
		return nil, fmt.Errorf("无权修改该帖子")
	}

	if err := validateTitle(params.Title); err != nil {
		span.SetStatus(codes.Error, "invalid title")
		return nil, err
	}
	if params.MediaType != "" && !model.ValidateMediaType(params.MediaType) {
		span.SetStatus(codes.Error, "invalid media type")
		return nil, fmt.Errorf("媒体类型无效: %s", params.MediaType)
	}

	// 编辑和创建共用同一份发帖配额
	decision := s.moderation.CheckRateLimit(ctx, strconv.FormatInt(params.OperatorID, 10), model.ActionTypePost)
	if !decision.Allowed {
		span.SetStatus(codes.Error, "rate limited")
		return nil, fmt.Errorf("%s", decision.Message)
	}

	result := s.moderation.Moderate(ctx, params.Title+"\n"+params.Content, moderationmodel.LevelAIAnalysis)
	if !result.Approved {
		span.SetAttributes(attribute.String("moderation.reason", result.Reason))
		span.SetStatus(codes.Error, "content rejected")
		return nil, fmt.Errorf("%s", result.Reason)
	}

	post.Title = strings.TrimSpace(params.Title)
	post.Content = params.Content
	if params.MediaType != "" {
		post.MediaType = params.MediaType
	}
	if params.MediaURL != "" {
		post.MediaURL = params.MediaURL
	}
	post.UpdatedAt = time.Now()

	if err := s.dao.UpdatePost(ctx, post); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update post")
		return nil, fmt.Errorf("更新帖子失败: %v", err)
	}

	s.publishEvent(ctx, model.EventPostUpdated, post)

	return post, nil
}

// DeletePost 删除帖子，仅作者本人可操作
func (s *Service) DeletePost(ctx context.Context, postID, operatorID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "post.service.DeletePost")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("post.id", postID),
		attribute.Int64("post.operator_id", operatorID),
	)

	post, err := s.dao.GetPost(ctx, postID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "post not found")
		return fmt.Errorf("帖子不存在")
	}

	if post.AuthorID != operatorID {
		span.SetStatus(codes.Error, "permission denied")
		return fmt.Errorf("无权删除该帖子")
	}

	if err := s.dao.DeletePost(ctx, postID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete post")
		return fmt.Errorf("删除帖子失败: %v", err)
	}

	s.publishEvent(ctx, model.EventPostDeleted, post)
	s.invalidateStatsCache(ctx, post.AuthorID)

	return nil
}

// GetAuthorStats 获取作者发帖统计，优先读缓存
func (s *Service) GetAuthorStats(ctx context.Context, authorID int64) (*model.AuthorStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "post.service.GetAuthorStats")
	defer span.End()

	span.SetAttributes(attribute.Int64("post.author_id", authorID))

	cacheKey := statsCacheKey(authorID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey); err == nil && cached != "" {
			var stats model.AuthorStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return &stats, nil
			}
		}
	}

	stats, err := s.dao.GetAuthorStats(ctx, authorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get author stats")
		return nil, fmt.Errorf("查询发帖统计失败: %v", err)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, cacheKey, string(payload), model.StatsCacheTTL*time.Second); err != nil {
				s.logger.Warn(ctx, "Failed to cache author stats", logger.F("error", err.Error()))
			}
		}
	}

	return stats, nil
}

// OnCommentCountChanged 评论数变更回调，供评论事件消费侧调用
func (s *Service) OnCommentCountChanged(ctx context.Context, postID int64, delta int64) error {
	if err := s.dao.UpdateCommentCount(ctx, postID, delta); err != nil {
		return fmt.Errorf("更新评论数失败: %v", err)
	}
	return nil
}

// publishEvent 发送帖子变更事件
func (s *Service) publishEvent(ctx context.Context, eventType string, post *model.Post) {
	if s.kafka == nil {
		return
	}

	event := &model.PostEvent{
		Type:       eventType,
		PostID:     post.ID,
		AuthorID:   post.AuthorID,
		OccurredAt: time.Now().Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal post event", logger.F("error", err.Error()))
		return
	}

	key := []byte(strconv.FormatInt(post.ID, 10))
	if err := s.kafka.SendMessage(eventType, key, payload); err != nil {
		s.logger.Error(ctx, "Failed to publish post event",
			logger.F("type", eventType),
			logger.F("error", err.Error()))
	}
}

// invalidateStatsCache 失效作者统计缓存
func (s *Service) invalidateStatsCache(ctx context.Context, authorID int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsCacheKey(authorID)); err != nil {
		s.logger.Warn(ctx, "Failed to invalidate stats cache", logger.F("error", err.Error()))
	}
}

func statsCacheKey(authorID int64) string {
	return fmt.Sprintf("%s:%d", model.StatsCacheKeyPrefix, authorID)
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < model.TitleMinLength {
		return fmt.Errorf("标题至少需要%d个字符", model.TitleMinLength)
	}
	if len(trimmed) > model.TitleMaxLength {
		return fmt.Errorf("标题不能超过%d个字符", model.TitleMaxLength)
	}
	return nil
}
