package graphql

import (
	"strconv"
	"strings"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/tokligence/moviegraph/internal/catalog"
)

// actorInput mirrors the ActorInput input object.
type actorInput struct {
	ID   *graphqlgo.ID
	Name *string
}

// movieInput mirrors the MovieInput input object.
type movieInput struct {
	ID     *graphqlgo.ID
	Title  *string
	Actors *[]*actorInput
	Year   *int32
}

func idToGQL(id int64) graphqlgo.ID {
	return graphqlgo.ID(strconv.FormatInt(id, 10))
}

// parseID converts a GraphQL ID into a store identity.
func parseID(id graphqlgo.ID) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(v *int32) int {
	if v == nil {
		return 0
	}
	return int(*v)
}

// movieParams converts input into store params. It reports false when an actor reference
// carries no usable id; such references can never resolve.
func movieParams(input movieInput) (catalog.MovieParams, bool) {
	params := catalog.MovieParams{
		Title: derefString(input.Title),
		Year:  derefInt(input.Year),
	}
	if input.Actors == nil {
		return params, true
	}
	for _, ref := range *input.Actors {
		if ref == nil || ref.ID == nil {
			return params, false
		}
		id, ok := parseID(*ref.ID)
		if !ok {
			return params, false
		}
		params.ActorIDs = append(params.ActorIDs, id)
	}
	return params, true
}
