// Package metrics 定义服务暴露给 Prometheus 的指标。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "askher"

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Metrics 持有所有指标以及它们所在的 registry。
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	communityEvents *prometheus.CounterVec
	tasksProcessed  *prometheus.CounterVec
	chatbotReplies  *prometheus.CounterVec
}

// New 创建指标并注册到一个独立的 registry 上。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		communityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "community",
			Name:      "events_total",
			Help:      "Successful community actions by kind",
		}, []string{"event"}),
		tasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "tasks_processed_total",
			Help:      "Background tasks handled by the pipeline",
		}, []string{"type", "status"}),
		chatbotReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chatbot",
			Name:      "replies_total",
			Help:      "Chatbot replies by outcome",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.requestTotal,
		m.requestLatency,
		m.communityEvents,
		m.tasksProcessed,
		m.chatbotReplies,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler 返回暴露该 registry 的 HTTP handler。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回底层 registry，主要用于测试。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest 记录一次 HTTP 请求。
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(duration.Seconds())
}

// CommunityEvent 记录一次成功的社区动作（asked、responded、published、hearted）。
func (m *Metrics) CommunityEvent(event string) {
	if m == nil {
		return
	}
	m.communityEvents.WithLabelValues(event).Inc()
}

// TaskProcessed 记录一个后台任务的处理结果。
func (m *Metrics) TaskProcessed(taskType string, err error) {
	if m == nil {
		return
	}
	m.tasksProcessed.WithLabelValues(taskType, outcome(err)).Inc()
}

// ChatbotReply 记录一次聊天回复的结果。
func (m *Metrics) ChatbotReply(err error) {
	if m == nil {
		return
	}
	m.chatbotReplies.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
