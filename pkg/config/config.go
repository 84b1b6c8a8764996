package config

import (
	"time"

	"HelpBeacon/pkg/logger"
	"HelpBeacon/pkg/util"
)

// Config 进程级配置，全部来自环境变量
type Config struct {
	Port            string `env:"PORT"`
	Addr            string `env:"ADDR"`
	Mode            string `env:"MODE"`
	Log             logger.LogConfig
	CacheType       string        `env:"CACHE_TYPE"`
	CacheMaxSize    int           `env:"CACHE_MAX_SIZE"`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL"`
	MetricsPath     string        `env:"METRICS_PATH"`
	StatsSchedule   string        `env:"STATS_SCHEDULE"`
	SSEPingInterval time.Duration `env:"SSE_PING_INTERVAL"`
	CORSAllowOrigin string        `env:"CORS_ALLOW_ORIGIN"`
}

const (
	DefaultPort          = "4000"
	DefaultStatsSchedule = "@every 1m"
	DefaultMetricsPath   = "/metrics"
)

var GlobalConfig *Config

// Load 读取环境变量并填充 GlobalConfig
func Load() *Config {
	port := util.GetEnvDefault("PORT", DefaultPort)

	// METRICS_PATH="" 表示关闭指标暴露，需要区分“未设置”和“设置为空”
	metricsPath, set := util.LookupEnv("METRICS_PATH")
	if !set {
		metricsPath = DefaultMetricsPath
	}

	GlobalConfig = &Config{
		Port: port,
		Addr: util.GetEnvDefault("ADDR", ":"+port),
		Mode: normalizeMode(util.GetEnvDefault("MODE", "release")),
		Log: logger.LogConfig{
			Level:      util.GetEnvDefault("LOG_LEVEL", "info"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnvDefault("LOG_MAX_SIZE", 100)),
			MaxAge:     int(util.GetIntEnvDefault("LOG_MAX_AGE", 7)),
			MaxBackups: int(util.GetIntEnvDefault("LOG_MAX_BACKUPS", 3)),
		},
		CacheType:       util.GetEnvDefault("CACHE_TYPE", "gocache"),
		CacheMaxSize:    int(util.GetIntEnvDefault("CACHE_MAX_SIZE", 10000)),
		IdempotencyTTL:  util.GetDurationEnv("IDEMPOTENCY_TTL", 10*time.Minute),
		MetricsPath:     metricsPath,
		StatsSchedule:   util.GetEnvDefault("STATS_SCHEDULE", DefaultStatsSchedule),
		SSEPingInterval: util.GetDurationEnv("SSE_PING_INTERVAL", 30*time.Second),
		CORSAllowOrigin: util.GetEnvDefault("CORS_ALLOW_ORIGIN", "*"),
	}
	return GlobalConfig
}

// normalizeMode 只接受 gin 认识的三种模式，其余一律按 release 处理
func normalizeMode(mode string) string {
	switch mode {
	case "debug", "release", "test":
		return mode
	default:
		return "release"
	}
}
