package cache

import (
	"context"
	"time"
)

// Cache 进程内键值缓存接口
type Cache interface {
	// Add 仅在键不存在（或已过期）时写入，返回是否写入成功。
	// expiration <= 0 时使用默认过期时间
	Add(ctx context.Context, key string, value interface{}, expiration time.Duration) bool

	// Delete 删除缓存
	Delete(ctx context.Context, key string) error

	// Close 释放资源
	Close() error
}

// Config 缓存配置
type Config struct {
	// 缓存类型: "gocache" 或 "lru"
	Type string `json:"type" env:"CACHE_TYPE" default:"gocache"`

	// 最大缓存项数，仅 lru 生效
	MaxSize int `json:"max_size" env:"CACHE_MAX_SIZE" default:"10000"`

	// 默认过期时间
	DefaultExpiration time.Duration `json:"default_expiration" default:"10m"`

	// 清理间隔，仅 gocache 生效
	CleanupInterval time.Duration `json:"cleanup_interval" default:"10m"`
}
