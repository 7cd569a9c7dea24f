package httpserver

import (
	"net/http"

	"github.com/tokligence/moviegraph/internal/health"
	"github.com/tokligence/moviegraph/internal/httpserver/protocol"
)

type healthEndpoint struct {
	server *Server
}

func newHealthEndpoint(server *Server) protocol.Endpoint {
	return &healthEndpoint{server: server}
}

func (e *healthEndpoint) Name() string { return "health" }

func (e *healthEndpoint) Routes() []protocol.EndpointRoute {
	return []protocol.EndpointRoute{
		{Method: http.MethodGet, Path: healthPath, Handler: http.HandlerFunc(e.server.HandleHealth)},
	}
}

// HandleHealth reports database reachability. Unhealthy maps to 503 so load balancers drain the node.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.health.Check(r.Context())
	code := http.StatusOK
	if status.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
		s.logger.Warn("health check failed", "components", status.Components)
	}
	s.respondJSON(w, code, status)
}
