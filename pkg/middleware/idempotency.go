package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"HelpBeacon/pkg/cache"
	"HelpBeacon/pkg/errors"
	"HelpBeacon/pkg/response"

	"github.com/gin-gonic/gin"
)

const DefaultIdempotencyHeader = "Idempotency-Key"

type IdempotencyConfig struct {
	HeaderName string        // Idempotency-Key 的请求头名
	TTL        time.Duration // 决定一段时间内重复请求的拒绝窗口
	Store      cache.Cache   // 记录已见过的键
}

// IdempotencyMiddleware 对带有幂等键的写请求去重。没有请求头的请求直接放行，
// 请求体不参与计算。键在处理期间即被占用，处理失败（状态码 >= 400 或 panic）时释放，
// 修正后的重试可以复用同一个键。
func IdempotencyMiddleware(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultIdempotencyHeader
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || cfg.Store == nil {
			c.Next()
			return
		}
		key := strings.TrimSpace(c.GetHeader(cfg.HeaderName))
		if key == "" {
			c.Next()
			return
		}
		// 同一个键在不同接口上互不影响
		scoped := c.Request.Method + " " + c.Request.URL.Path + " " + key
		if !cfg.Store.Add(c.Request.Context(), scoped, time.Now().UnixMilli(), cfg.TTL) {
			response.Fail(c, errors.WithCode(errors.CodeConflict, "duplicate request"))
			return
		}

		completed := false
		defer func() {
			if !completed || c.Writer.Status() >= http.StatusBadRequest {
				_ = cfg.Store.Delete(context.Background(), scoped)
			}
		}()
		c.Next()
		completed = true
	}
}
