package openstack

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics exports gateway call counts and latencies.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the gateway collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nimbus",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Upstream requests by service, method and status code.",
		}, []string{"service", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nimbus",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Upstream request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method"}),
	}

	for _, collector := range []prometheus.Collector{m.requests, m.latency} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Install adds the metric interceptors to chain.
func (m *PrometheusMetrics) Install(chain *InterceptorChain) {
	chain.AddRequestInterceptor(MetricsRequestInterceptor())
	chain.AddResponseInterceptor(m.observe)
}

func (m *PrometheusMetrics) observe(ctx context.Context, req *Request, resp *Response) error {
	// status 0 means the request never got a response
	m.requests.WithLabelValues(req.Service, req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	if startTime, ok := req.Metadata[startTimeKey].(time.Time); ok {
		m.latency.WithLabelValues(req.Service, req.Method).Observe(time.Since(startTime).Seconds())
	}

	return nil
}
