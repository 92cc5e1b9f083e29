package chatgpt

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WithMetrics is a ClientOption that instruments the client's transport with
// Prometheus request counters and latency histograms, registered with reg.
//
// The collectors are registered once per client, so give each client its own
// registry (or wrap reg with [prometheus.WrapRegistererWith]) when creating
// more than one instrumented client.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(client *Client) {
		client.registerer = reg
	}
}

// instrumentHTTPClient returns a shallow copy of hc whose transport reports
// to collectors registered with reg.
func instrumentHTTPClient(hc *http.Client, reg prometheus.Registerer) *http.Client {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatgpt",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Total number of requests made to the API, by status code and method.",
	}, []string{"code", "method"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatgpt",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests made to the API, by status code and method.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"code", "method"})

	reg.MustRegister(requests, duration)

	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	instrumented := *hc
	instrumented.Transport = promhttp.InstrumentRoundTripperCounter(requests,
		promhttp.InstrumentRoundTripperDuration(duration, base),
	)

	return &instrumented
}
