package httpserver

import (
	"net/http"

	"github.com/tokligence/moviegraph/internal/httpserver/protocol"
)

type graphQLEndpoint struct {
	server *Server
}

func newGraphQLEndpoint(server *Server) protocol.Endpoint {
	return &graphQLEndpoint{server: server}
}

func (e *graphQLEndpoint) Name() string { return "graphql" }

func (e *graphQLEndpoint) Routes() []protocol.EndpointRoute {
	return []protocol.EndpointRoute{
		{Method: http.MethodPost, Path: graphqlPath, Handler: e.server.graphql},
	}
}

type playgroundEndpoint struct {
	server *Server
}

func newPlaygroundEndpoint(server *Server) protocol.Endpoint {
	return &playgroundEndpoint{server: server}
}

func (e *playgroundEndpoint) Name() string { return "playground" }

func (e *playgroundEndpoint) Routes() []protocol.EndpointRoute {
	return []protocol.EndpointRoute{
		{Method: http.MethodGet, Path: playgroundPath, Handler: e.server.playground},
	}
}
