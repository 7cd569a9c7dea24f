package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tokligence/moviegraph/internal/httpserver/protocol"
	"github.com/tokligence/moviegraph/internal/metrics"
)

type metricsEndpoint struct {
	server *Server
}

func newMetricsEndpoint(server *Server) protocol.Endpoint {
	return &metricsEndpoint{server: server}
}

func (e *metricsEndpoint) Name() string { return "metrics" }

func (e *metricsEndpoint) Routes() []protocol.EndpointRoute {
	return []protocol.EndpointRoute{
		{Method: http.MethodGet, Path: metricsPath, Handler: http.HandlerFunc(e.server.HandleMetrics)},
	}
}

// HandleMetrics serves the request counters in Prometheus text format.
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(metrics.FormatPrometheus(s.metrics.GetSnapshot())))
}

// metricsMiddleware records counters keyed by the matched route pattern so that
// unknown paths collapse into a single "unmatched" series.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		inflight := knownRoute(r.URL.Path)
		s.metrics.RecordRequestStart(inflight)
		defer s.metrics.RecordRequestEnd(inflight)

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.RecordRequest(route, time.Since(start))
		if ww.Status() >= http.StatusInternalServerError {
			s.metrics.RecordError(route)
		}
	})
}

const unmatchedRoute = "unmatched"

// knownRoute is used before chi has matched a pattern.
func knownRoute(path string) string {
	switch path {
	case graphqlPath, playgroundPath, healthPath, metricsPath:
		return path
	default:
		return unmatchedRoute
	}
}
