package service

import (
	"context"
	"fmt"
	"sync"

	"sportshub-social/apps/moderation-service/dao"
	"sportshub-social/apps/moderation-service/model"
	"sportshub-social/pkg/config"
	"sportshub-social/pkg/logger"
)

// RateLimiter 用户维度限流器
// 读改写全程持有互斥锁，所有key串行处理，保证并发请求下计数准确
type RateLimiter struct {
	dao    dao.RateCounterDAO
	cfg    config.RateLimitConfig
	logger logger.Logger
	mu     sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(counterDAO dao.RateCounterDAO, cfg config.RateLimitConfig, log logger.Logger) *RateLimiter {
	return &RateLimiter{
		dao:    counterDAO,
		cfg:    cfg,
		logger: log,
	}
}

// IsAllowed 判断动作是否放行，放行时消耗一次配额
// 配额一旦消耗不会退还，即使后续审核拒绝了内容
func (rl *RateLimiter) IsAllowed(ctx context.Context, userID, actionType string) bool {
	allowed, _ := rl.Allow(ctx, userID, actionType)
	return allowed
}

// Allow 判断动作是否放行并返回决策后的剩余配额
// 判定和剩余量在同一把锁内取得，并发请求下两者始终一致
func (rl *RateLimiter) Allow(ctx context.Context, userID, actionType string) (bool, int) {
	limit := rl.limitFor(actionType)
	if !rl.cfg.Enabled {
		return true, limit
	}

	key := counterKey(actionType, userID)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	count, _, err := rl.dao.Get(ctx, key)
	if err != nil {
		// 存储故障时放行，限流是保护机制而不是硬依赖
		rl.logger.Error(ctx, "Rate counter read failed, allowing action",
			logger.F("key", key), logger.F("error", err.Error()))
		return true, limit
	}

	if count >= int64(limit) {
		return false, 0
	}

	if err := rl.dao.Set(ctx, key, count+1); err != nil {
		rl.logger.Error(ctx, "Rate counter write failed",
			logger.F("key", key), logger.F("error", err.Error()))
	}

	return true, limit - int(count+1)
}

// GetRemainingCount 查询剩余配额，不消耗配额
func (rl *RateLimiter) GetRemainingCount(ctx context.Context, userID, actionType string) int {
	limit := rl.limitFor(actionType)
	key := counterKey(actionType, userID)

	count, ok, err := rl.dao.Get(ctx, key)
	if err != nil {
		rl.logger.Error(ctx, "Rate counter read failed",
			logger.F("key", key), logger.F("error", err.Error()))
		return limit
	}
	if !ok {
		return limit
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining
}

// LimitFor 查询动作类型对应的上限
func (rl *RateLimiter) LimitFor(actionType string) int {
	return rl.limitFor(actionType)
}

// limitFor 按动作类型取配置上限，未知类型用兜底值
func (rl *RateLimiter) limitFor(actionType string) int {
	switch actionType {
	case model.ActionTypePost:
		if rl.cfg.PostsPerHour > 0 {
			return rl.cfg.PostsPerHour
		}
		return model.DefaultPostsPerHour
	case model.ActionTypeComment:
		if rl.cfg.CommentsPerHour > 0 {
			return rl.cfg.CommentsPerHour
		}
		return model.DefaultCommentsPerHour
	default:
		return model.DefaultLimit
	}
}

// counterKey 生成计数器键
func counterKey(actionType, userID string) string {
	return fmt.Sprintf("%s:%s:%s", model.RateLimitKeyPrefix, actionType, userID)
}
