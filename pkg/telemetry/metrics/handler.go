package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the collector's registry. A collection error does not stop
// the remaining metrics from being written.
func (c *Collector) Handler() http.Handler {
	opts := promhttp.HandlerOpts{
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	}
	return promhttp.HandlerFor(c.registry, opts)
}
