package dao

import (
	"context"
	"sync"
	"time"
)

// counterEntry 内存计数器条目
type counterEntry struct {
	count      int64
	expireAt   time.Time // 绝对过期时间，最近一次写入+1小时
	idleExpire time.Time // 空闲过期时间，最近一次访问+30分钟
}

// memoryCounterDAO 进程内计数器存储
// 时钟可注入，测试时可以用假时钟驱动过期
type memoryCounterDAO struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
	now     func() time.Time
}

// NewMemoryCounterDAO 创建内存计数器存储
func NewMemoryCounterDAO() RateCounterDAO {
	return NewMemoryCounterDAOWithClock(time.Now)
}

// NewMemoryCounterDAOWithClock 创建使用指定时钟的内存计数器存储
func NewMemoryCounterDAOWithClock(now func() time.Time) RateCounterDAO {
	return &memoryCounterDAO{
		entries: make(map[string]*counterEntry),
		now:     now,
	}
}

// Get 读取当前计数
func (d *memoryCounterDAO) Get(ctx context.Context, key string) (int64, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[key]
	if !ok {
		return 0, false, nil
	}

	now := d.now()
	if d.expired(entry, now) {
		delete(d.entries, key)
		return 0, false, nil
	}

	// 访问刷新空闲过期
	entry.idleExpire = now.Add(SlidingExpiration)

	return entry.count, true, nil
}

// Set 写入计数并重置过期时间
func (d *memoryCounterDAO) Set(ctx context.Context, key string, count int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.entries[key] = &counterEntry{
		count:      count,
		expireAt:   now.Add(AbsoluteExpiration),
		idleExpire: now.Add(SlidingExpiration),
	}

	return nil
}

// expired 判断条目是否过期，两个窗口任一到期即失效
func (d *memoryCounterDAO) expired(entry *counterEntry, now time.Time) bool {
	return !now.Before(entry.expireAt) || !now.Before(entry.idleExpire)
}
