package dao

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"sportshub-social/pkg/redis"
)

// redisCounterDAO Redis计数器存储
// 值编码为 "计数|绝对过期时间戳"，键TTL承担空闲过期，绝对过期由值内时间戳判断
type redisCounterDAO struct {
	rdb *redis.RedisClient
	now func() time.Time
}

// NewRedisCounterDAO 创建Redis计数器存储
func NewRedisCounterDAO(rdb *redis.RedisClient) RateCounterDAO {
	return &redisCounterDAO{
		rdb: rdb,
		now: time.Now,
	}
}

// Get 读取当前计数
func (d *redisCounterDAO) Get(ctx context.Context, key string) (int64, bool, error) {
	raw, err := d.rdb.Get(ctx, key)
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("获取限流计数失败: %w", err)
	}

	count, deadline, err := decodeCounter(raw)
	if err != nil {
		// 脏数据直接丢弃
		_ = d.rdb.Del(ctx, key)
		return 0, false, nil
	}

	now := d.now()
	if !now.Before(deadline) {
		_ = d.rdb.Del(ctx, key)
		return 0, false, nil
	}

	// 访问刷新空闲过期，但不能越过绝对过期
	_ = d.rdb.Expire(ctx, key, idleTTL(now, deadline))

	return count, true, nil
}

// Set 写入计数并重置过期时间
func (d *redisCounterDAO) Set(ctx context.Context, key string, count int64) error {
	now := d.now()
	deadline := now.Add(AbsoluteExpiration)

	if err := d.rdb.Set(ctx, key, encodeCounter(count, deadline), idleTTL(now, deadline)); err != nil {
		return fmt.Errorf("写入限流计数失败: %w", err)
	}

	return nil
}

// idleTTL 计算键TTL，取空闲窗口与剩余绝对窗口的较小值
func idleTTL(now, deadline time.Time) time.Duration {
	ttl := SlidingExpiration
	if remaining := deadline.Sub(now); remaining < ttl {
		ttl = remaining
	}
	return ttl
}

// encodeCounter 编码计数值
func encodeCounter(count int64, deadline time.Time) string {
	return fmt.Sprintf("%d|%d", count, deadline.Unix())
}

// decodeCounter 解码计数值
func decodeCounter(raw string) (int64, time.Time, error) {
	parts := strings.SplitN(raw, "|", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("无效的计数器编码: %q", raw)
	}

	count, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, err
	}

	deadlineUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, err
	}

	return count, time.Unix(deadlineUnix, 0), nil
}
