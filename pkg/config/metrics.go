package config

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/pkg/metrics"
)

// MetricsResult carries the outcome of metrics initialization.
type MetricsResult struct {
	// Server serves the Prometheus scrape endpoint on the configured
	// port; nil when metrics are disabled. The server is not started;
	// the caller owns its lifecycle.
	Server *http.Server
}

// InitializeMetrics sets up the process-wide Prometheus registry and the
// scrape endpoint when metrics are enabled. With metrics disabled it does
// nothing, and metric constructors elsewhere return inert instances.
func InitializeMetrics(cfg *Config) MetricsResult {
	if !cfg.Metrics.Enabled {
		return MetricsResult{}
	}

	metrics.InitRegistry()
	logger.Debug("metrics registry initialized", "port", cfg.Metrics.Port)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	return MetricsResult{
		Server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		},
	}
}
