// Package metrics exposes PromptForge runtime counters through Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promptforge"

// PrometheusRecorder records upstream dispatches, generations and chat routes.
// It satisfies llm.Recorder.
type PrometheusRecorder struct {
	dispatches  *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	generations *prometheus.CounterVec
	chatRoutes  *prometheus.CounterVec
}

// NewPrometheusRecorder registers all collectors on registry.
func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Upstream dispatches by provider, transport and outcome",
		}, []string{"provider", "transport", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Upstream dispatch latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"provider", "transport"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Prompt generations by mode and result",
		}, []string{"mode", "result"}),
		chatRoutes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_routes_total",
			Help:      "Chat messages by selected route",
		}, []string{"route"}),
	}

	for _, collector := range []prometheus.Collector{r.dispatches, r.durations, r.generations, r.chatRoutes} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveDispatch counts one upstream call and its latency. A zero duration
// marks a dispatch that never reached a transport and records no latency.
func (r *PrometheusRecorder) ObserveDispatch(provider, transport, outcome string, d time.Duration) {
	r.dispatches.WithLabelValues(provider, transport, outcome).Inc()
	if d > 0 {
		r.durations.WithLabelValues(provider, transport).Observe(d.Seconds())
	}
}

// ObserveGeneration counts one /generate or /generate-short result ("ok" or "error").
func (r *PrometheusRecorder) ObserveGeneration(mode, result string) {
	r.generations.WithLabelValues(mode, result).Inc()
}

// ObserveChatRoute counts one routed chat message.
func (r *PrometheusRecorder) ObserveChatRoute(route string) {
	r.chatRoutes.WithLabelValues(route).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
