package httptransport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idflow/internal/platform/health"
	"idflow/pkg/platform/httputil"
	request "idflow/pkg/platform/middleware/request"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// Options carries what the router needs beyond the route groups.
type Options struct {
	Logger   *slog.Logger
	Health   *health.Handler
	Gatherer prometheus.Gatherer
	Metrics  *request.Metrics
}

type notFoundResponse struct {
	Error string `json:"error"`
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(opts Options, groups ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(opts.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(opts.Logger))
	r.Use(request.CORS)
	r.Use(request.BodyLimit(request.DefaultMaxBodyBytes))
	if opts.Metrics != nil {
		r.Use(request.LatencyMiddleware(opts.Metrics))
	}

	if opts.Health != nil {
		opts.Health.Register(r)
	}
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	for _, g := range groups {
		g.Register(r)
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

// notFound echoes the method and requested path.
func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, notFoundResponse{
		Error: fmt.Sprintf("Cannot %s %s", r.Method, r.URL.RequestURI()),
	})
}
