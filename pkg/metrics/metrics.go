// Package metrics 提供控制台调用上游后端的 Prometheus 指标。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder 上游调用指标记录接口，API Client 依赖此接口
type Recorder interface {
	ObserveUpstream(operation string, statusCode int, elapsed time.Duration)
	RecordTransportError(operation string)
	RecordFanOut(operation string, succeeded, failed int)
}

// Collector Prometheus 实现
type Collector struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	transportErrors *prometheus.CounterVec
	fanOutResults   *prometheus.CounterVec
}

// NewCollector 创建 Collector 并注册到指定 Registerer
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unihub_upstream_requests_total",
			Help: "按操作与状态码统计的上游请求数",
		}, []string{"operation", "status_code"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unihub_upstream_latency_seconds",
			Help:    "上游请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unihub_upstream_transport_errors_total",
			Help: "上游网络层失败次数",
		}, []string{"operation"}),
		fanOutResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unihub_fanout_results_total",
			Help: "批量并发调用的单项结果数",
		}, []string{"operation", "result"}),
	}

	reg.MustRegister(c.upstreamTotal, c.upstreamLatency, c.transportErrors, c.fanOutResults)
	return c
}

// ObserveUpstream 记录一次完成的上游请求
func (c *Collector) ObserveUpstream(operation string, statusCode int, elapsed time.Duration) {
	c.upstreamTotal.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	c.upstreamLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordTransportError 记录网络层失败
func (c *Collector) RecordTransportError(operation string) {
	c.transportErrors.WithLabelValues(operation).Inc()
}

// RecordFanOut 记录一次批量调用的成功与失败数
func (c *Collector) RecordFanOut(operation string, succeeded, failed int) {
	c.fanOutResults.WithLabelValues(operation, "success").Add(float64(succeeded))
	c.fanOutResults.WithLabelValues(operation, "failure").Add(float64(failed))
}

// Handler Prometheus 抓取端点
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop 不做任何记录，测试与未开启指标时使用
type Nop struct{}

func (Nop) ObserveUpstream(string, int, time.Duration) {}
func (Nop) RecordTransportError(string)                {}
func (Nop) RecordFanOut(string, int, int)              {}
