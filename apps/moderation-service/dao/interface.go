package dao

import (
	"context"
	"time"
)

// 计数器过期窗口
// 每次写入后最多存活1小时，且30分钟无任何访问即失效，先到先清
const (
	AbsoluteExpiration = time.Hour
	SlidingExpiration  = 30 * time.Minute
)

// RateCounterDAO 限流计数器存储
// key按 (动作类型, 用户ID) 组合，过期由存储层负责，调用方不做显式清理
type RateCounterDAO interface {
	// Get 读取当前计数，不存在或已过期时返回 (0, false)
	// 读取会刷新空闲过期时间
	Get(ctx context.Context, key string) (int64, bool, error)

	// Set 写入计数并重置全部过期时间
	Set(ctx context.Context, key string, count int64) error
}
