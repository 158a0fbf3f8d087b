package http

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	numericSegment = regexp.MustCompile(`/\d+(/|$)`)
	versionPrefix  = regexp.MustCompile(`^/v\d+`)
)

// Metrics records request counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tevo",
			Name:      "http_requests_total",
			Help:      "API requests by method, path template and status.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tevo",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of API requests, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	if reg == nil {
		return metrics, nil
	}

	for _, collector := range []prometheus.Collector{metrics.requests, metrics.duration} {
		err := reg.Register(collector)
		if err != nil {
			return nil, err
		}
	}

	return metrics, nil
}

// Requests exposes the request counter.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}

// Duration exposes the latency histogram.
func (m *Metrics) Duration() *prometheus.HistogramVec {
	return m.duration
}

func (m *Metrics) observe(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	template := NormalizePath(path)

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	m.requests.WithLabelValues(method, template, label).Inc()
	m.duration.WithLabelValues(method, template).Observe(duration.Seconds())
}

// NormalizePath strips the version prefix and replaces numeric ids with ":id"
// to keep label cardinality bounded.
func NormalizePath(path string) string {
	path = versionPrefix.ReplaceAllString(path, "")

	// ids can be adjacent ("/1/2"), so replace until stable
	for {
		next := numericSegment.ReplaceAllString(path, "/:id$1")
		if next == path {
			break
		}

		path = next
	}

	if path == "" {
		return "/"
	}

	return strings.TrimSuffix(path, "/")
}
