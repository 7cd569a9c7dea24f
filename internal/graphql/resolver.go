package graphql

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/tokligence/moviegraph/internal/catalog"
)

// Resolver is the root of the schema. Query and Mutation fields are methods on it.
type Resolver struct {
	store  catalog.Store
	logger *log.Logger
}

// NewResolver creates a new Resolver with the given store. A nil logger falls back to log.Default().
func NewResolver(store catalog.Store, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		store:  store,
		logger: logger,
	}
}

// panicLogger reports resolver panics recovered by the executor.
type panicLogger struct {
	logger *log.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.logger.Error("graphql resolver panic", "panic", fmt.Sprint(value))
}
