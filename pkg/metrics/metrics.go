package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标管理器
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP请求指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 业务指标
	registrySize    *prometheus.GaugeVec
	operationsTotal *prometheus.CounterVec
	streamClients   prometheus.Gauge
}

// NewMetrics 在 reg 上注册全部指标。reg 为 nil 时使用独立的新 Registry，
// 测试中每个用例各自一份，避免重复注册。
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		registrySize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "beacon_registry_size",
				Help: "Number of entries held by each in-memory registry",
			},
			[]string{"registry"},
		),

		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_operations_total",
				Help: "Registry operations by outcome",
			},
			[]string{"operation", "status"},
		),

		streamClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "beacon_stream_clients",
				Help: "Number of connected event stream clients",
			},
		),
	}
}

// RecordHTTPRequest 记录HTTP请求
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int64) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if responseSize > 0 {
		m.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// SetRegistrySizes 更新各注册表的当前大小
func (m *Metrics) SetRegistrySizes(sizes map[string]int) {
	for name, n := range sizes {
		m.registrySize.WithLabelValues(name).Set(float64(n))
	}
}

// RecordOperation status 为 ok / invalid / not_found / error
func (m *Metrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) SetStreamClients(n int) {
	m.streamClients.Set(float64(n))
}

// Handler 指标暴露接口
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
