package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sportshub-social/apps/moderation-service/dao"
	"sportshub-social/apps/moderation-service/model"
	"sportshub-social/pkg/config"
	"sportshub-social/pkg/logger"
)

// failingCounterDAO 总是返回错误的计数存储
type failingCounterDAO struct{}

func (failingCounterDAO) Get(ctx context.Context, key string) (int64, bool, error) {
	return 0, false, errors.New("storage down")
}

func (failingCounterDAO) Set(ctx context.Context, key string, count int64) error {
	return errors.New("storage down")
}

func newTestLimiter(counterDAO dao.RateCounterDAO, cfg config.RateLimitConfig) *RateLimiter {
	return NewRateLimiter(counterDAO, cfg, logger.GetLogger())
}

func enabledConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:         true,
		PostsPerHour:    10,
		CommentsPerHour: 30,
	}
}

// TestIsAllowedConsumesQuota 放行即消耗配额，超限拒绝
func TestIsAllowedConsumesQuota(t *testing.T) {
	rl := newTestLimiter(dao.NewMemoryCounterDAO(), enabledConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if !rl.IsAllowed(ctx, "alice", model.ActionTypePost) {
			t.Fatalf("request %d: expected allow", i+1)
		}
	}

	if rl.IsAllowed(ctx, "alice", model.ActionTypePost) {
		t.Fatal("request 11: expected deny")
	}

	if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypePost); remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
}

// TestAllowReportsRemaining 判定和剩余量在同一把锁内取得，逐次递减到0
func TestAllowReportsRemaining(t *testing.T) {
	rl := newTestLimiter(dao.NewMemoryCounterDAO(), enabledConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, remaining := rl.Allow(ctx, "alice", model.ActionTypePost)
		if !allowed {
			t.Fatalf("request %d: expected allow", i+1)
		}
		if remaining != 10-(i+1) {
			t.Errorf("request %d: remaining = %d, want %d", i+1, remaining, 10-(i+1))
		}
	}

	allowed, remaining := rl.Allow(ctx, "alice", model.ActionTypePost)
	if allowed || remaining != 0 {
		t.Errorf("request 11: (allowed, remaining) = (%v, %d), want (false, 0)", allowed, remaining)
	}
}

// TestAllowConcurrentRemainingConsistent 并发下每次放行拿到的剩余量互不重复
func TestAllowConcurrentRemainingConsistent(t *testing.T) {
	rl := newTestLimiter(dao.NewMemoryCounterDAO(), enabledConfig())
	ctx := context.Background()

	const workers = 20
	results := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, remaining := rl.Allow(ctx, "alice", model.ActionTypePost)
			if allowed {
				results <- remaining
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	allowedCount := 0
	for remaining := range results {
		allowedCount++
		if remaining < 0 || remaining > 9 {
			t.Errorf("remaining = %d out of range", remaining)
		}
		if seen[remaining] {
			t.Errorf("remaining = %d reported twice", remaining)
		}
		seen[remaining] = true
	}
	if allowedCount != 10 {
		t.Errorf("allowed %d requests, want 10", allowedCount)
	}
}

// TestRateLimiterDisabled 关闭限流后全部放行
func TestRateLimiterDisabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false
	rl := newTestLimiter(dao.NewMemoryCounterDAO(), cfg)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if !rl.IsAllowed(ctx, "alice", model.ActionTypePost) {
			t.Fatalf("request %d: expected allow with limiter disabled", i+1)
		}
	}
}

// TestQuotaIsolation 不同用户、不同动作类型的配额互不影响
func TestQuotaIsolation(t *testing.T) {
	rl := newTestLimiter(dao.NewMemoryCounterDAO(), enabledConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		rl.IsAllowed(ctx, "alice", model.ActionTypePost)
	}
	if rl.IsAllowed(ctx, "alice", model.ActionTypePost) {
		t.Fatal("alice post: expected deny after exhausting quota")
	}

	if !rl.IsAllowed(ctx, "bob", model.ActionTypePost) {
		t.Error("bob post: expected allow, quotas are per user")
	}
	if !rl.IsAllowed(ctx, "alice", model.ActionTypeComment) {
		t.Error("alice comment: expected allow, quotas are per action type")
	}
}

// TestGetRemainingCountNonMutating 查询剩余配额不消耗配额
func TestGetRemainingCountNonMutating(t *testing.T) {
	rl := newTestLimiter(dao.NewMemoryCounterDAO(), enabledConfig())
	ctx := context.Background()

	if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypeComment); remaining != 30 {
		t.Fatalf("initial remaining = %d, want 30", remaining)
	}

	rl.IsAllowed(ctx, "alice", model.ActionTypeComment)
	rl.IsAllowed(ctx, "alice", model.ActionTypeComment)

	for i := 0; i < 5; i++ {
		if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypeComment); remaining != 28 {
			t.Fatalf("remaining = %d, want 28", remaining)
		}
	}
}

// TestUnknownActionTypeUsesDefaultLimit 未知动作类型使用兜底上限
func TestUnknownActionTypeUsesDefaultLimit(t *testing.T) {
	rl := newTestLimiter(dao.NewMemoryCounterDAO(), enabledConfig())
	ctx := context.Background()

	if limit := rl.LimitFor("share"); limit != model.DefaultLimit {
		t.Fatalf("limit = %d, want %d", limit, model.DefaultLimit)
	}

	for i := 0; i < model.DefaultLimit; i++ {
		if !rl.IsAllowed(ctx, "alice", "share") {
			t.Fatalf("request %d: expected allow", i+1)
		}
	}
	if rl.IsAllowed(ctx, "alice", "share") {
		t.Fatal("expected deny after default limit")
	}
}

// TestQuotaResetAfterAbsoluteExpiry 绝对过期后配额重置
func TestQuotaResetAfterAbsoluteExpiry(t *testing.T) {
	now := time.Now()
	counterDAO := dao.NewMemoryCounterDAOWithClock(func() time.Time { return now })
	rl := newTestLimiter(counterDAO, enabledConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		rl.IsAllowed(ctx, "alice", model.ActionTypePost)
	}
	if rl.IsAllowed(ctx, "alice", model.ActionTypePost) {
		t.Fatal("expected deny after exhausting quota")
	}

	now = now.Add(time.Hour + time.Minute)

	if !rl.IsAllowed(ctx, "alice", model.ActionTypePost) {
		t.Fatal("expected allow after absolute expiry")
	}
	if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypePost); remaining != 9 {
		t.Errorf("remaining = %d, want 9", remaining)
	}
}

// TestQuotaResetAfterIdleExpiry 空闲超过滑动窗口后配额重置
func TestQuotaResetAfterIdleExpiry(t *testing.T) {
	now := time.Now()
	counterDAO := dao.NewMemoryCounterDAOWithClock(func() time.Time { return now })
	rl := newTestLimiter(counterDAO, enabledConfig())
	ctx := context.Background()

	rl.IsAllowed(ctx, "alice", model.ActionTypePost)

	now = now.Add(31 * time.Minute)

	if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypePost); remaining != 10 {
		t.Errorf("remaining = %d, want 10 after idle expiry", remaining)
	}
}

// TestReadsRefreshIdleWindow 读取会刷新滑动窗口，但绝对过期不受影响
func TestReadsRefreshIdleWindow(t *testing.T) {
	now := time.Now()
	counterDAO := dao.NewMemoryCounterDAOWithClock(func() time.Time { return now })
	rl := newTestLimiter(counterDAO, enabledConfig())
	ctx := context.Background()

	rl.IsAllowed(ctx, "alice", model.ActionTypePost)

	// 每25分钟读一次，滑动窗口被不断刷新
	now = now.Add(25 * time.Minute)
	if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypePost); remaining != 9 {
		t.Fatalf("remaining = %d, want 9 after refresh read", remaining)
	}

	now = now.Add(25 * time.Minute)
	if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypePost); remaining != 9 {
		t.Fatalf("remaining = %d, want 9 after second refresh read", remaining)
	}

	// 距最后写入超过1小时，刷新也挡不住绝对过期
	now = now.Add(11 * time.Minute)
	if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypePost); remaining != 10 {
		t.Errorf("remaining = %d, want 10 after absolute expiry", remaining)
	}
}

// TestFailOpenOnStorageError 存储故障时放行
func TestFailOpenOnStorageError(t *testing.T) {
	rl := newTestLimiter(failingCounterDAO{}, enabledConfig())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if !rl.IsAllowed(ctx, "alice", model.ActionTypePost) {
			t.Fatalf("request %d: expected fail-open allow", i+1)
		}
	}

	if remaining := rl.GetRemainingCount(ctx, "alice", model.ActionTypePost); remaining != 10 {
		t.Errorf("remaining = %d, want full limit on storage error", remaining)
	}
}
