package util

import (
	"sync"
	"time"
)

// Clock is the time source used by everything that ages data out.
type Clock interface {
	Now() time.Time
}

// forwardClock 墙上时钟回拨时停在上一次的读数，保证 Now 不递减。
// 各登记表按创建时间顺序追加，过期清理依赖这一点。
type forwardClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func (c *forwardClock) Now() time.Time {
	// Round(0) 去掉单调时钟读数，按墙上时间比较
	now := c.now().Round(0)
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.Before(c.last) {
		return c.last
	}
	c.last = now
	return now
}

// SystemClock returns the wall clock, held steady across backward steps.
func SystemClock() Clock { return &forwardClock{now: time.Now} }

// ManualClock is a Clock that only moves when told to. Safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d. Negative d is ignored.
func (m *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
