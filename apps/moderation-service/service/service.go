package service

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sportshub-social/apps/moderation-service/model"
	"sportshub-social/pkg/kafka"
	"sportshub-social/pkg/logger"
	"sportshub-social/pkg/telemetry"
)

// Service 审核服务
// 组合审核流水线和限流器，对外提供写路径前置检查
type Service struct {
	moderator *Moderator
	limiter   *RateLimiter
	producer  *kafka.Producer
	logger    logger.Logger
}

// NewService 创建审核服务实例
// producer可以为nil，此时不发送拦截事件
func NewService(moderator *Moderator, limiter *RateLimiter, producer *kafka.Producer, log logger.Logger) *Service {
	return &Service{
		moderator: moderator,
		limiter:   limiter,
		producer:  producer,
		logger:    log,
	}
}

// Moderate 审核内容
func (s *Service) Moderate(ctx context.Context, params *model.ModerateParams) *model.ModerationResult {
	ctx, span := telemetry.StartSpan(ctx, "moderation.service.Moderate")
	defer span.End()

	maxLevel := params.MaxLevel
	if maxLevel == 0 {
		maxLevel = model.LevelAIAnalysis
	}

	span.SetAttributes(
		attribute.Int("moderation.max_level", int(maxLevel)),
		attribute.Int("moderation.content_length", len(params.Content)),
	)

	result := s.moderator.Moderate(ctx, params.Content, maxLevel)

	span.SetAttributes(
		attribute.Bool("moderation.approved", result.Approved),
		attribute.String("moderation.level", result.Level.String()),
	)

	if !result.Approved {
		s.logger.Info(ctx, "Content blocked",
			logger.F("reason", result.Reason),
			logger.F("level", result.Level.String()),
			logger.F("confidence", result.ConfidenceScore))
		s.publishBlockedEvent(ctx, result)
		span.SetStatus(codes.Ok, "content blocked")
		return result
	}

	span.SetStatus(codes.Ok, "content approved")
	return result
}

// CheckRateLimit 判断动作是否放行，放行时消耗一次配额
func (s *Service) CheckRateLimit(ctx context.Context, params *model.RateLimitParams) *model.RateLimitDecision {
	ctx, span := telemetry.StartSpan(ctx, "moderation.service.CheckRateLimit")
	defer span.End()

	span.SetAttributes(
		attribute.String("rate_limit.user_id", params.UserID),
		attribute.String("rate_limit.action_type", params.ActionType),
	)

	allowed, remaining := s.limiter.Allow(ctx, params.UserID, params.ActionType)

	decision := &model.RateLimitDecision{
		Allowed:   allowed,
		Remaining: remaining,
	}
	if !allowed {
		decision.Message = model.ReasonRateLimitedHint
		s.logger.Info(ctx, "Action rate limited",
			logger.F("userID", params.UserID),
			logger.F("actionType", params.ActionType))
	}

	span.SetAttributes(attribute.Bool("rate_limit.allowed", allowed))
	span.SetStatus(codes.Ok, "rate limit checked")

	return decision
}

// GetRemainingQuota 查询剩余配额，不消耗配额
func (s *Service) GetRemainingQuota(ctx context.Context, params *model.RateLimitParams) *model.RemainingQuota {
	ctx, span := telemetry.StartSpan(ctx, "moderation.service.GetRemainingQuota")
	defer span.End()

	return &model.RemainingQuota{
		Remaining: s.limiter.GetRemainingCount(ctx, params.UserID, params.ActionType),
		Limit:     s.limiter.LimitFor(params.ActionType),
	}
}

// publishBlockedEvent 发送内容拦截事件
func (s *Service) publishBlockedEvent(ctx context.Context, result *model.ModerationResult) {
	if s.producer == nil {
		return
	}

	event := &model.BlockedEvent{
		Reason:     result.Reason,
		Level:      result.Level,
		Confidence: result.ConfidenceScore,
		OccurredAt: time.Now().Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal blocked event", logger.F("error", err.Error()))
		return
	}

	if err := s.producer.SendMessage(model.EventContentBlocked, nil, payload); err != nil {
		s.logger.Error(ctx, "Failed to publish blocked event", logger.F("error", err.Error()))
	}
}
