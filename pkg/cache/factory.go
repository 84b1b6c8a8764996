package cache

import (
	"fmt"
	"strings"
	"time"
)

// NewCache 创建缓存实例
func NewCache(config Config) (Cache, error) {
	if config.DefaultExpiration <= 0 {
		config.DefaultExpiration = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = config.DefaultExpiration
	}

	switch strings.ToLower(config.Type) {
	case "", "gocache":
		return NewGoCache(config), nil
	case "lru":
		return NewLRUCache(config), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", config.Type)
	}
}
