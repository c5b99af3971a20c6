// Package metrics exposes the process metrics registered through promauto.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nicolasimarinw/hr-ontology/pkg/server"
)

const DefaultPath = "/debug/prometheus"

type PrometheusController struct {
	path    string
	handler http.Handler
}

// NewPrometheusController serves the default registry merged with any extra
// gatherers under path.
func NewPrometheusController(path string, extra ...prometheus.Gatherer) server.Controller {
	if path == "" {
		path = DefaultPath
	}
	gatherers := append(prometheus.Gatherers{prometheus.DefaultGatherer}, extra...)
	return &PrometheusController{
		path: path,
		handler: promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{
			ErrorHandling:     promhttp.ContinueOnError,
			EnableOpenMetrics: true,
		}),
	}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, c.handler).Methods(http.MethodGet)
}
