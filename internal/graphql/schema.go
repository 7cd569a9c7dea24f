package graphql

import (
	"bytes"
	_ "embed"
	"fmt"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

//go:embed schema.graphql
var schemaSDL string

// DefaultMaxDepth bounds query nesting; Actor.movies and Movie.actors recurse.
const DefaultMaxDepth = 12

// SDL returns the raw schema definition served by the API.
func SDL() string {
	return schemaSDL
}

// ValidateSchema checks the SDL against the GraphQL type system rules.
func ValidateSchema() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return schema, nil
}

// PrintSchema returns the validated schema in canonical formatting.
func PrintSchema() (string, error) {
	schema, err := ValidateSchema()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchema(schema)
	return buf.String(), nil
}

// NewSchema binds the resolver to the SDL. It is built once at startup and is safe for
// concurrent use by every request.
func NewSchema(resolver *Resolver, maxDepth int) (*graphqlgo.Schema, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	schema, err := graphqlgo.ParseSchema(schemaSDL, resolver,
		graphqlgo.MaxDepth(maxDepth),
		graphqlgo.Logger(panicLogger{logger: resolver.logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL schema: %w", err)
	}
	return schema, nil
}
