// Package postgres provides a PostgreSQL implementation of catalog.Store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/tokligence/moviegraph/internal/catalog"
)

const (
	// DriverPGX selects the jackc/pgx stdlib driver.
	DriverPGX = "pgx"
	// DriverPQ selects the lib/pq driver.
	DriverPQ = "postgres"
)

// Store implements catalog.Store for PostgreSQL.
type Store struct {
	db       *sql.DB
	arrayArg func([]int64) interface{}
}

// Config holds driver and connection pool settings.
type Config struct {
	Driver          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns sensible defaults for connection pooling.
func DefaultConfig() Config {
	return Config{
		Driver:          DriverPGX,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// New creates a new PostgreSQL store with the given DSN.
func New(dsn string, cfg Config) (*Store, error) {
	driver, arrayArg, err := resolveDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, arrayArg: arrayArg}
	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// resolveDriver maps a configured driver name onto a database/sql driver and the way that
// driver expects a bigint[] parameter to be passed.
func resolveDriver(name string) (string, func([]int64) interface{}, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DriverPGX:
		// pgx encodes Go slices as native arrays.
		return DriverPGX, func(ids []int64) interface{} { return ids }, nil
	case DriverPQ, "pq", "libpq":
		return DriverPQ, func(ids []int64) interface{} { return pq.Array(ids) }, nil
	default:
		return "", nil, fmt.Errorf("unsupported postgres driver %q", name)
	}
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==============================================================================
// Actors
// ==============================================================================

func (s *Store) GetActor(ctx context.Context, id int64) (*catalog.Actor, error) {
	var a catalog.Actor
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM actors WHERE id = $1`, id).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get actor: %w", err)
	}
	return &a, nil
}

func (s *Store) ListActors(ctx context.Context) ([]catalog.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM actors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	return scanActors(rows)
}

func (s *Store) CreateActor(ctx context.Context, name string) (*catalog.Actor, error) {
	a := catalog.Actor{Name: name}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO actors (name) VALUES ($1)
		RETURNING id
	`, name).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("create actor: %w", err)
	}
	return &a, nil
}

func (s *Store) UpdateActor(ctx context.Context, id int64, name string) (*catalog.Actor, error) {
	var a catalog.Actor
	err := s.db.QueryRowContext(ctx, `
		UPDATE actors SET name = $2 WHERE id = $1
		RETURNING id, name
	`, id, name).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update actor: %w", err)
	}
	return &a, nil
}

func (s *Store) ActorMovies(ctx context.Context, actorID int64) ([]catalog.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.title, m.year
		FROM movies m
		JOIN movie_actors ma ON ma.movie_id = m.id
		WHERE ma.actor_id = $1
		ORDER BY m.id
	`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list actor movies: %w", err)
	}
	return scanMovies(rows)
}

// ==============================================================================
// Movies
// ==============================================================================

func (s *Store) GetMovie(ctx context.Context, id int64) (*catalog.Movie, error) {
	var m catalog.Movie
	err := s.db.QueryRowContext(ctx, `SELECT id, title, year FROM movies WHERE id = $1`, id).Scan(&m.ID, &m.Title, &m.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return &m, nil
}

func (s *Store) ListMovies(ctx context.Context) ([]catalog.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, year FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return scanMovies(rows)
}

func (s *Store) MovieActors(ctx context.Context, movieID int64) ([]catalog.Actor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name
		FROM actors a
		JOIN movie_actors ma ON ma.actor_id = a.id
		WHERE ma.movie_id = $1
		ORDER BY a.id
	`, movieID)
	if err != nil {
		return nil, fmt.Errorf("list movie actors: %w", err)
	}
	return scanActors(rows)
}

func (s *Store) CreateMovie(ctx context.Context, params catalog.MovieParams) (*catalog.Movie, error) {
	actorIDs := catalog.UniqueIDs(params.ActorIDs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.checkActors(ctx, tx, actorIDs); err != nil {
		return nil, err
	}
	m := catalog.Movie{Title: params.Title, Year: params.Year}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO movies (title, year) VALUES ($1, $2)
		RETURNING id
	`, params.Title, params.Year).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	if err := s.setActors(ctx, tx, m.ID, actorIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit movie: %w", err)
	}
	return &m, nil
}

func (s *Store) UpdateMovie(ctx context.Context, id int64, params catalog.MovieParams) (*catalog.Movie, error) {
	actorIDs := catalog.UniqueIDs(params.ActorIDs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the row so concurrent updates of the same movie serialize.
	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM movies WHERE id = $1 FOR UPDATE`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if err := s.checkActors(ctx, tx, actorIDs); err != nil {
		return nil, err
	}
	m := catalog.Movie{ID: id}
	err = tx.QueryRowContext(ctx, `
		UPDATE movies SET title = $2, year = $3 WHERE id = $1
		RETURNING title, year
	`, id, params.Title, params.Year).Scan(&m.Title, &m.Year)
	if err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	if err := s.setActors(ctx, tx, id, actorIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit movie: %w", err)
	}
	return &m, nil
}

// ==============================================================================
// Helper Functions
// ==============================================================================

func (s *Store) checkActors(ctx context.Context, tx *sql.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := tx.QueryContext(ctx, `SELECT id FROM actors WHERE id = ANY($1)`, s.arrayArg(ids))
	if err != nil {
		return fmt.Errorf("resolve actors: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
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
	if missing, ok := catalog.MissingActor(ids, found); ok {
		return &catalog.UnknownActorError{ID: missing}
	}
	return nil
}

func (s *Store) setActors(ctx context.Context, tx *sql.Tx, movieID int64, actorIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_actors WHERE movie_id = $1`, movieID); err != nil {
		return fmt.Errorf("clear movie actors: %w", err)
	}
	if len(actorIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO movie_actors (movie_id, actor_id)
		SELECT $1, unnest($2::bigint[])
	`, movieID, s.arrayArg(actorIDs))
	if err != nil {
		return fmt.Errorf("add movie actors: %w", err)
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
