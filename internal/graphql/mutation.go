package graphql

import (
	"context"
)

type createActorArgs struct {
	Input actorInput
}

type updateActorArgs struct {
	ID    int32
	Input actorInput
}

type createMovieArgs struct {
	Input movieInput
}

type updateMovieArgs struct {
	ID    int32
	Input movieInput
}

// CreateActor persists a new actor. ok is always true once the row is written.
func (r *Resolver) CreateActor(ctx context.Context, args createActorArgs) (*actorPayload, error) {
	a, err := r.store.CreateActor(ctx, derefString(args.Input.Name))
	if err != nil {
		return nil, r.storageError("createActor", err)
	}
	r.logger.Debug("actor created", "id", a.ID)
	return &actorPayload{ok: true, actor: r.wrapActor(a)}, nil
}

// CreateCtor is the deprecated spelling of CreateActor.
func (r *Resolver) CreateCtor(ctx context.Context, args createActorArgs) (*actorPayload, error) {
	return r.CreateActor(ctx, args)
}

// UpdateActor overwrites the actor's name. An unknown id reports ok=false.
func (r *Resolver) UpdateActor(ctx context.Context, args updateActorArgs) (*actorPayload, error) {
	a, err := r.store.UpdateActor(ctx, int64(args.ID), derefString(args.Input.Name))
	if err != nil {
		return nil, r.storageError("updateActor", err)
	}
	if a == nil {
		return &actorPayload{ok: false}, nil
	}
	r.logger.Debug("actor updated", "id", a.ID)
	return &actorPayload{ok: true, actor: r.wrapActor(a)}, nil
}

// CreateMovie persists a movie with its actor set. Any unresolvable actor reference reports
// ok=false and nothing is written.
func (r *Resolver) CreateMovie(ctx context.Context, args createMovieArgs) (*moviePayload, error) {
	params, ok := movieParams(args.Input)
	if !ok {
		return &moviePayload{ok: false}, nil
	}
	m, err := r.store.CreateMovie(ctx, params)
	if isUnknownActor(err) {
		r.logger.Debug("createMovie rejected", "err", err)
		return &moviePayload{ok: false}, nil
	}
	if err != nil {
		return nil, r.storageError("createMovie", err)
	}
	r.logger.Debug("movie created", "id", m.ID, "actors", len(params.ActorIDs))
	return &moviePayload{ok: true, movie: r.wrapMovie(m)}, nil
}

// UpdateMovie replaces title, year and the full actor set. An unknown movie id or any
// unresolvable actor reference reports ok=false and leaves the movie untouched.
func (r *Resolver) UpdateMovie(ctx context.Context, args updateMovieArgs) (*moviePayload, error) {
	params, ok := movieParams(args.Input)
	if !ok {
		return &moviePayload{ok: false}, nil
	}
	m, err := r.store.UpdateMovie(ctx, int64(args.ID), params)
	if isUnknownActor(err) {
		r.logger.Debug("updateMovie rejected", "id", args.ID, "err", err)
		return &moviePayload{ok: false}, nil
	}
	if err != nil {
		return nil, r.storageError("updateMovie", err)
	}
	if m == nil {
		return &moviePayload{ok: false}, nil
	}
	r.logger.Debug("movie updated", "id", m.ID, "actors", len(params.ActorIDs))
	return &moviePayload{ok: true, movie: r.wrapMovie(m)}, nil
}
