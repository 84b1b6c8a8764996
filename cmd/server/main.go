package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "HelpBeacon/internal/handler"
	"HelpBeacon/internal/store"
	"HelpBeacon/pkg/cache"
	"HelpBeacon/pkg/config"
	"HelpBeacon/pkg/logger"
	"HelpBeacon/pkg/metrics"
	"HelpBeacon/pkg/middleware"
	"HelpBeacon/pkg/scheduler"
	"HelpBeacon/pkg/sse"
	"HelpBeacon/pkg/util"
	"HelpBeacon/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Log, cfg.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Mode)

	stores := store.New(util.SystemClock(), util.NewID)
	m := metrics.NewMetrics(nil)
	hub := sse.NewHub(cfg.SSEPingInterval, sse.WithClientObserver(m.SetStreamClients))

	idem, err := cache.NewCache(cache.Config{
		Type:              cfg.CacheType,
		MaxSize:           cfg.CacheMaxSize,
		DefaultExpiration: cfg.IdempotencyTTL,
	})
	if err != nil {
		logger.Fatal("init idempotency cache failed", zap.Error(err))
	}
	defer idem.Close()

	cr := scheduler.NewCron(time.UTC)
	if _, err := cr.Add(cfg.StatsSchedule, scheduler.StatsReporter{Source: stores, Sink: m}); err != nil {
		logger.Fatal("invalid stats schedule", zap.String("schedule", cfg.StatsSchedule), zap.Error(err))
	}
	cr.Start()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(cfg.CORSAllowOrigin))
	engine.Use(middleware.OperationLogMiddleware())
	engine.Use(metrics.MonitorMiddleware(m))

	handlers.NewHandlers(stores, handlers.Options{
		Hub:            hub,
		WebSocket:      websocket.LoadConfigFromEnv(),
		Metrics:        m,
		MetricsPath:    cfg.MetricsPath,
		Idempotency:    idem,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}).Register(engine)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HelpBeacon backend listening", zap.String("addr", cfg.Addr), zap.String("mode", cfg.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cr.Stop()
	// 事件流是长连接，先断开才能让 Shutdown 按时完成
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("server exited")
}
