package masto

import (
	"fmt"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"
)

var apiLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "storsim_masto_request_latency",
		Help:    "Histogram of Mastodon API request latency in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	},
	[]string{"method", "path", "status_code"},
)

// MetricMiddleware records per-request latency labelled by method, path
// and status code. Install via ClientConfig.ResponseMiddlewares.
func MetricMiddleware(_ *resty.Client, response *resty.Response) error {
	reqURL, err := url.Parse(response.Request.URL)
	if err != nil {
		return err
	}

	apiLatency.WithLabelValues(
		response.Request.Method,
		reqURL.Path,
		fmt.Sprintf("%d", response.StatusCode()),
	).Observe(response.Duration().Seconds())

	return nil
}
