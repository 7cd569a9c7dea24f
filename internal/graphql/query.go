package graphql

import (
	"context"
)

// Actor resolves actor(id). A missing id yields null; an unknown id is a NOT_FOUND error.
func (r *Resolver) Actor(ctx context.Context, args struct{ ID *int32 }) (*actorResolver, error) {
	if args.ID == nil {
		return nil, nil
	}
	id := int64(*args.ID)
	a, err := r.store.GetActor(ctx, id)
	if err != nil {
		return nil, r.storageError("actor", err)
	}
	if a == nil {
		return nil, notFound("actor", id)
	}
	return r.wrapActor(a), nil
}

// Movie resolves movie(id) with the same contract as Actor.
func (r *Resolver) Movie(ctx context.Context, args struct{ ID *int32 }) (*movieResolver, error) {
	if args.ID == nil {
		return nil, nil
	}
	id := int64(*args.ID)
	m, err := r.store.GetMovie(ctx, id)
	if err != nil {
		return nil, r.storageError("movie", err)
	}
	if m == nil {
		return nil, notFound("movie", id)
	}
	return r.wrapMovie(m), nil
}

func (r *Resolver) Actors(ctx context.Context) ([]*actorResolver, error) {
	actors, err := r.store.ListActors(ctx)
	if err != nil {
		return nil, r.storageError("actors", err)
	}
	return r.wrapActors(actors), nil
}

func (r *Resolver) Movies(ctx context.Context) ([]*movieResolver, error) {
	movies, err := r.store.ListMovies(ctx)
	if err != nil {
		return nil, r.storageError("movies", err)
	}
	return r.wrapMovies(movies), nil
}
