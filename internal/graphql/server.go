package graphql

import (
	"net/http"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/charmbracelet/log"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/tokligence/moviegraph/internal/catalog"
)

// NewHandler creates a new GraphQL HTTP handler with the given store.
func NewHandler(store catalog.Store, logger *log.Logger, maxDepth int) (http.Handler, error) {
	schema, err := NewSchema(NewResolver(store, logger), maxDepth)
	if err != nil {
		return nil, err
	}
	return &relay.Handler{Schema: schema}, nil
}

// NewPlaygroundHandler creates a GraphQL playground handler.
func NewPlaygroundHandler(endpoint string) http.Handler {
	return playground.Handler("moviegraph", endpoint)
}
