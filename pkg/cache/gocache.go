package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// goCacheWrapper go-cache包装器
type goCacheWrapper struct {
	cache *gocache.Cache
}

// NewGoCache 创建基于go-cache的本地缓存
func NewGoCache(config Config) Cache {
	return &goCacheWrapper{
		cache: gocache.New(config.DefaultExpiration, config.CleanupInterval),
	}
}

func expirationOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return gocache.DefaultExpiration
	}
	return d
}

// Add go-cache 的 Add 在键存在且未过期时返回错误
func (gc *goCacheWrapper) Add(ctx context.Context, key string, value interface{}, expiration time.Duration) bool {
	return gc.cache.Add(key, value, expirationOrDefault(expiration)) == nil
}

// Delete 删除缓存
func (gc *goCacheWrapper) Delete(ctx context.Context, key string) error {
	gc.cache.Delete(key)
	return nil
}

// Close go-cache不需要关闭连接
func (gc *goCacheWrapper) Close() error {
	return nil
}
