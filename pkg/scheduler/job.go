package scheduler

import (
	"context"

	"HelpBeacon/pkg/logger"

	"go.uber.org/zap"
)

type Job interface{ Run(ctx context.Context) }

type FuncJob func(ctx context.Context)

func (f FuncJob) Run(ctx context.Context) { f(ctx) }

// SizeSource 能报告各注册表大小的对象。实现方不应在这里触发清理。
type SizeSource interface {
	Sizes() map[string]int
}

// SizeSink 接收统计结果，通常是 metrics.Metrics
type SizeSink interface {
	SetRegistrySizes(map[string]int)
}

// StatsReporter 定时把注册表大小写入日志和指标
type StatsReporter struct {
	Source SizeSource
	Sink   SizeSink
}

func (r StatsReporter) Run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	sizes := r.Source.Sizes()
	if r.Sink != nil {
		r.Sink.SetRegistrySizes(sizes)
	}
	fields := make([]zap.Field, 0, len(sizes))
	for name, n := range sizes {
		fields = append(fields, zap.Int(name, n))
	}
	logger.Info("registry stats", fields...)
}
