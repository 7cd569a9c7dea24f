package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tokligence/moviegraph/internal/catalog"
	"github.com/tokligence/moviegraph/internal/graphql"
	"github.com/tokligence/moviegraph/internal/health"
	"github.com/tokligence/moviegraph/internal/httpserver/protocol"
	"github.com/tokligence/moviegraph/internal/metrics"
)

const (
	graphqlPath    = "/graphql"
	playgroundPath = "/"
	healthPath     = "/healthz"
	metricsPath    = "/metrics"
)

// Config wires the dependencies of the HTTP surface.
type Config struct {
	Store             catalog.Store
	Logger            *log.Logger
	Health            *health.Checker
	Metrics           *metrics.Collector
	MaxDepth          int
	PlaygroundEnabled bool
}

// Server exposes the GraphQL API, the playground and the health probe.
type Server struct {
	logger     *log.Logger
	graphql    http.Handler
	playground http.Handler
	health     *health.Checker
	metrics    *metrics.Collector
}

// New builds the server. The GraphQL schema is parsed once here.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("httpserver: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	gql, err := graphql.NewHandler(cfg.Store, logger, cfg.MaxDepth)
	if err != nil {
		return nil, err
	}
	s := &Server{
		logger:  logger,
		graphql: gql,
		health:  cfg.Health,
		metrics: cfg.Metrics,
	}
	if cfg.PlaygroundEnabled {
		s.playground = graphql.NewPlaygroundHandler(graphqlPath)
	}
	if s.health == nil {
		s.health = health.New(health.Config{Database: cfg.Store})
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector()
	}
	return s, nil
}

// Router returns the chi router serving every endpoint.
func (s *Server) Router() http.Handler {
	r := s.newBaseRouter()
	endpoints := []protocol.Endpoint{newGraphQLEndpoint(s), newHealthEndpoint(s), newMetricsEndpoint(s)}
	if s.playground != nil {
		endpoints = append(endpoints, newPlaygroundEndpoint(s))
	}
	s.registerEndpoints(r, endpoints...)
	return r
}

func (s *Server) newBaseRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)
	return r
}

func (s *Server) registerEndpoints(r chi.Router, endpoints ...protocol.Endpoint) {
	for _, endpoint := range endpoints {
		if endpoint == nil {
			continue
		}
		for _, route := range endpoint.Routes() {
			r.Method(route.Method, route.Path, route.Handler)
		}
		s.logger.Debug("registered endpoint", "name", endpoint.Name())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
