package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// lruCache 有容量上限的本地缓存。expirable.LRU 只支持统一的过期时间，
// 单次写入传入的 expiration 会被忽略。
type lruCache struct {
	// Add 需要 Contains + Add 的原子组合
	mu    sync.Mutex
	cache *expirable.LRU[string, interface{}]
}

// NewLRUCache 创建基于 golang-lru 的缓存，超过 MaxSize 时淘汰最久未使用的项
func NewLRUCache(config Config) Cache {
	size := config.MaxSize
	if size <= 0 {
		size = 10000
	}
	return &lruCache{
		cache: expirable.NewLRU[string, interface{}](size, nil, config.DefaultExpiration),
	}
}

func (lc *lruCache) Add(ctx context.Context, key string, value interface{}, _ time.Duration) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.cache.Contains(key) {
		return false
	}
	lc.cache.Add(key, value)
	return true
}

func (lc *lruCache) Delete(ctx context.Context, key string) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.cache.Remove(key)
	return nil
}

func (lc *lruCache) Close() error {
	lc.cache.Purge()
	return nil
}
