package handlers

import (
	"time"

	"HelpBeacon/internal/store"
	"HelpBeacon/pkg/cache"
	"HelpBeacon/pkg/errors"
	"HelpBeacon/pkg/metrics"
	"HelpBeacon/pkg/middleware"
	"HelpBeacon/pkg/sse"
	"HelpBeacon/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// Options 可选的外围组件，均可为空
type Options struct {
	Hub            *sse.Hub
	WebSocket      *websocket.Config
	Metrics        *metrics.Metrics
	MetricsPath    string
	Idempotency    cache.Cache
	IdempotencyTTL time.Duration
}

type Handlers struct {
	stores *store.Stores
	opts   Options
}

func NewHandlers(stores *store.Stores, opts Options) *Handlers {
	return &Handlers{
		stores: stores,
		opts:   opts,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	r := engine.Group("")
	if h.opts.Idempotency != nil {
		r.Use(middleware.IdempotencyMiddleware(middleware.IdempotencyConfig{
			TTL:   h.opts.IdempotencyTTL,
			Store: h.opts.Idempotency,
		}))
	}

	// Register System Module Routes
	h.registerSystemRoutes(r)

	// Register Business Module Routes
	h.registerPresenceRoutes(r)
	h.registerMessageRoutes(r)
	h.registerAlertRoutes(r)
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	r.GET("/", h.handleLiveness)
	r.GET("/health", h.HealthCheck)
	if h.opts.Metrics != nil && h.opts.MetricsPath != "" {
		r.GET(h.opts.MetricsPath, gin.WrapH(h.opts.Metrics.Handler()))
	}
	if h.opts.Hub != nil {
		r.GET("/stream", h.handleStream)
		r.GET("/ws", h.handleWebSocket)
	}
}

func (h *Handlers) registerPresenceRoutes(r *gin.RouterGroup) {
	r.POST("/presence", h.handleReportPresence)
	r.GET("/nearby-users", h.handleNearbyUsers)
}

func (h *Handlers) registerMessageRoutes(r *gin.RouterGroup) {
	r.POST("/messages", h.handlePostMessage)
	r.GET("/messages", h.handleNearbyMessages)
}

func (h *Handlers) registerAlertRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/help-alerts")
	{
		alerts.POST("", h.handleCreateAlert)
		alerts.GET("", h.handleNearbyAlerts)
		alerts.GET("/:id", h.handleGetAlert)
		alerts.POST("/:id/accept", h.handleAcceptAlert)

		// direct messages
		alerts.GET("/:id/messages", h.handleListDirectMessages)
		alerts.POST("/:id/messages", h.handlePostDirectMessage)
	}
}

// observe 记录一次注册表操作的结果
func (h *Handlers) observe(operation string, err error) {
	if h.opts.Metrics == nil {
		return
	}
	status := "ok"
	switch {
	case err == nil:
	case errors.IsValidation(err):
		status = "invalid"
	case errors.IsNotFound(err):
		status = "not_found"
	default:
		status = "error"
	}
	h.opts.Metrics.RecordOperation(operation, status)
}

func (h *Handlers) publish(ev sse.Event) {
	if h.opts.Hub != nil {
		h.opts.Hub.Publish(ev)
	}
}
