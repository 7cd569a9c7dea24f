// Package catalog defines the movie/actor records and the persistence contract shared by the
// SQLite and PostgreSQL backends.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record requested by identity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownActor is returned when a movie write references an actor that does not exist.
	ErrUnknownActor = errors.New("unknown actor")
)

// Actor is a performer that can be credited on any number of movies.
type Actor struct {
	ID   int64
	Name string
}

// Movie is a film with a release year. Its actor set is stored separately, see Store.MovieActors.
type Movie struct {
	ID    int64
	Title string
	Year  int
}

// MovieParams carries the full replacement state of a movie, including its actor set.
type MovieParams struct {
	Title    string
	Year     int
	ActorIDs []int64
}

// Store persists actors, movies and the relationship between them.
//
// Get* and Update* methods return (nil, nil) when the target record does not exist.
// CreateMovie and UpdateMovie write the movie row and its actor set in one transaction and
// fail with an error wrapping ErrUnknownActor, before anything is written, when an actor is missing.
type Store interface {
	GetActor(ctx context.Context, id int64) (*Actor, error)
	ListActors(ctx context.Context) ([]Actor, error)
	CreateActor(ctx context.Context, name string) (*Actor, error)
	UpdateActor(ctx context.Context, id int64, name string) (*Actor, error)
	ActorMovies(ctx context.Context, actorID int64) ([]Movie, error)

	GetMovie(ctx context.Context, id int64) (*Movie, error)
	ListMovies(ctx context.Context) ([]Movie, error)
	CreateMovie(ctx context.Context, params MovieParams) (*Movie, error)
	UpdateMovie(ctx context.Context, id int64, params MovieParams) (*Movie, error)
	MovieActors(ctx context.Context, movieID int64) ([]Actor, error)

	Ping(ctx context.Context) error
	Close() error
}

// UnknownActorError reports which actor reference failed to resolve.
type UnknownActorError struct {
	ID int64
}

func (e *UnknownActorError) Error() string {
	return fmt.Sprintf("unknown actor %d", e.ID)
}

// Unwrap lets errors.Is match ErrUnknownActor.
func (e *UnknownActorError) Unwrap() error { return ErrUnknownActor }

// UniqueIDs drops duplicates while keeping first-seen order.
func UniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// MissingActor returns the first id in want that is absent from found.
func MissingActor(want []int64, found map[int64]struct{}) (int64, bool) {
	for _, id := range want {
		if _, ok := found[id]; !ok {
			return id, true
		}
	}
	return 0, false
}
