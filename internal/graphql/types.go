package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/tokligence/moviegraph/internal/catalog"
)

type actorResolver struct {
	root  *Resolver
	actor catalog.Actor
}

func (r *actorResolver) ID() graphqlgo.ID { return idToGQL(r.actor.ID) }

func (r *actorResolver) Name() string { return r.actor.Name }

// Movies resolves the reverse side of the movie/actor relationship.
func (r *actorResolver) Movies(ctx context.Context) ([]*movieResolver, error) {
	movies, err := r.root.store.ActorMovies(ctx, r.actor.ID)
	if err != nil {
		return nil, r.root.storageError("actor.movies", err)
	}
	return r.root.wrapMovies(movies), nil
}

type movieResolver struct {
	root  *Resolver
	movie catalog.Movie
}

func (r *movieResolver) ID() graphqlgo.ID { return idToGQL(r.movie.ID) }

func (r *movieResolver) Title() string { return r.movie.Title }

func (r *movieResolver) Year() int32 { return int32(r.movie.Year) }

func (r *movieResolver) Actors(ctx context.Context) ([]*actorResolver, error) {
	actors, err := r.root.store.MovieActors(ctx, r.movie.ID)
	if err != nil {
		return nil, r.root.storageError("movie.actors", err)
	}
	return r.root.wrapActors(actors), nil
}

func (r *Resolver) wrapActor(a *catalog.Actor) *actorResolver {
	if a == nil {
		return nil
	}
	return &actorResolver{root: r, actor: *a}
}

func (r *Resolver) wrapActors(actors []catalog.Actor) []*actorResolver {
	result := make([]*actorResolver, len(actors))
	for i := range actors {
		result[i] = r.wrapActor(&actors[i])
	}
	return result
}

func (r *Resolver) wrapMovie(m *catalog.Movie) *movieResolver {
	if m == nil {
		return nil
	}
	return &movieResolver{root: r, movie: *m}
}

func (r *Resolver) wrapMovies(movies []catalog.Movie) []*movieResolver {
	result := make([]*movieResolver, len(movies))
	for i := range movies {
		result[i] = r.wrapMovie(&movies[i])
	}
	return result
}

// Mutation payloads. Each carries ok plus the affected record, or nil.

type actorPayload struct {
	ok    bool
	actor *actorResolver
}

func (p *actorPayload) Ok() bool { return p.ok }

func (p *actorPayload) Actor() *actorResolver { return p.actor }

type moviePayload struct {
	ok    bool
	movie *movieResolver
}

func (p *moviePayload) Ok() bool { return p.ok }

func (p *moviePayload) Movie() *movieResolver { return p.movie }
