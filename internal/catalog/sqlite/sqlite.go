package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// register sqlite driver
	_ "modernc.org/sqlite"

	"github.com/tokligence/moviegraph/internal/catalog"
)

// Store implements catalog.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite catalog at the given path.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}
	// foreign_keys is per connection, so it rides on the DSN rather than a one-off PRAGMA.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS actors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS movie_actors (
	movie_id INTEGER NOT NULL REFERENCES movies(id),
	actor_id INTEGER NOT NULL REFERENCES actors(id),
	PRIMARY KEY (movie_id, actor_id)
);

CREATE INDEX IF NOT EXISTS idx_movie_actors_actor ON movie_actors(actor_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases underlying database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetActor returns the actor with the given id, or nil if absent.
func (s *Store) GetActor(ctx context.Context, id int64) (*catalog.Actor, error) {
	var a catalog.Actor
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM actors WHERE id = ?`, id).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get actor: %w", err)
	}
	return &a, nil
}

// ListActors returns every actor in insertion order.
func (s *Store) ListActors(ctx context.Context) ([]catalog.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM actors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	return scanActors(rows)
}

// CreateActor inserts a new actor.
func (s *Store) CreateActor(ctx context.Context, name string) (*catalog.Actor, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO actors(name) VALUES(?)`, name)
	if err != nil {
		return nil, fmt.Errorf("create actor: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create actor: %w", err)
	}
	return &catalog.Actor{ID: id, Name: name}, nil
}

// UpdateActor overwrites the actor's name. Returns nil if the actor does not exist.
func (s *Store) UpdateActor(ctx context.Context, id int64, name string) (*catalog.Actor, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE actors SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update actor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update actor: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return &catalog.Actor{ID: id, Name: name}, nil
}

// ActorMovies lists the movies an actor is credited on.
func (s *Store) ActorMovies(ctx context.Context, actorID int64) ([]catalog.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT m.id, m.title, m.year
FROM movies m
JOIN movie_actors ma ON ma.movie_id = m.id
WHERE ma.actor_id = ?
ORDER BY m.id`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list actor movies: %w", err)
	}
	return scanMovies(rows)
}

// GetMovie returns the movie with the given id, or nil if absent.
func (s *Store) GetMovie(ctx context.Context, id int64) (*catalog.Movie, error) {
	var m catalog.Movie
	err := s.db.QueryRowContext(ctx, `SELECT id, title, year FROM movies WHERE id = ?`, id).Scan(&m.ID, &m.Title, &m.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return &m, nil
}

// ListMovies returns every movie in insertion order.
func (s *Store) ListMovies(ctx context.Context) ([]catalog.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, year FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return scanMovies(rows)
}

// MovieActors lists the actors credited on a movie, ordered by actor id.
func (s *Store) MovieActors(ctx context.Context, movieID int64) ([]catalog.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT a.id, a.name
FROM actors a
JOIN movie_actors ma ON ma.actor_id = a.id
WHERE ma.movie_id = ?
ORDER BY a.id`, movieID)
	if err != nil {
		return nil, fmt.Errorf("list movie actors: %w", err)
	}
	return scanActors(rows)
}

// CreateMovie inserts a movie and its actor set in one transaction.
func (s *Store) CreateMovie(ctx context.Context, params catalog.MovieParams) (*catalog.Movie, error) {
	actorIDs := catalog.UniqueIDs(params.ActorIDs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkActors(ctx, tx, actorIDs); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO movies(title, year) VALUES(?, ?)`, params.Title, params.Year)
	if err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	if err := setActors(ctx, tx, id, actorIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit movie: %w", err)
	}
	return &catalog.Movie{ID: id, Title: params.Title, Year: params.Year}, nil
}

// UpdateMovie replaces a movie's fields and actor set in one transaction.
// Returns nil if the movie does not exist.
func (s *Store) UpdateMovie(ctx context.Context, id int64, params catalog.MovieParams) (*catalog.Movie, error) {
	actorIDs := catalog.UniqueIDs(params.ActorIDs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if err := checkActors(ctx, tx, actorIDs); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE movies SET title = ?, year = ? WHERE id = ?`, params.Title, params.Year, id); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	if err := setActors(ctx, tx, id, actorIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit movie: %w", err)
	}
	return &catalog.Movie{ID: id, Title: params.Title, Year: params.Year}, nil
}

// lookupBatchSize keeps each IN list well under SQLite's bound-parameter limit.
var lookupBatchSize = 500

func checkActors(ctx context.Context, tx *sql.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	found := make(map[int64]struct{}, len(ids))
	for start := 0; start < len(ids); start += lookupBatchSize {
		end := min(start+lookupBatchSize, len(ids))
		if err := collectActorIDs(ctx, tx, ids[start:end], found); err != nil {
			return err
		}
	}
	if missing, ok := catalog.MissingActor(ids, found); ok {
		return &catalog.UnknownActorError{ID: missing}
	}
	return nil
}

func collectActorIDs(ctx context.Context, tx *sql.Tx, ids []int64, found map[int64]struct{}) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := tx.QueryContext(ctx, `SELECT id FROM actors WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("resolve actors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan actor id: %w", err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("resolve actors: %w", err)
	}
	return nil
}

func setActors(ctx context.Context, tx *sql.Tx, movieID int64, actorIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_actors WHERE movie_id = ?`, movieID); err != nil {
		return fmt.Errorf("clear movie actors: %w", err)
	}
	for _, actorID := range actorIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO movie_actors(movie_id, actor_id) VALUES(?, ?)`, movieID, actorID); err != nil {
			return fmt.Errorf("add movie actor: %w", err)
		}
	}
	return nil
}

func scanActors(rows *sql.Rows) ([]catalog.Actor, error) {
	defer rows.Close()
	var actors []catalog.Actor
	for rows.Next() {
		var a catalog.Actor
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

func scanMovies(rows *sql.Rows) ([]catalog.Movie, error) {
	defer rows.Close()
	var movies []catalog.Movie
	for rows.Next() {
		var m catalog.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Year); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}
