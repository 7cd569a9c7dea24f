// Package seed loads YAML fixtures of actors and movies into a catalog store.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/tokligence/moviegraph/internal/catalog"
)

// ActorFixture is an actor definition. Key is local to the fixture file.
type ActorFixture struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

// MovieFixture references its cast by actor key.
type MovieFixture struct {
	Title  string   `yaml:"title"`
	Year   int      `yaml:"year"`
	Actors []string `yaml:"actors"`
}

// Fixture is the document layout of a seed file.
type Fixture struct {
	Actors []ActorFixture `yaml:"actors"`
	Movies []MovieFixture `yaml:"movies"`
}

// Result summarizes what Apply wrote.
type Result struct {
	Actors int
	Movies int
}

// LoadFile reads and validates a fixture from disk.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return fx, nil
}

// Parse decodes and validates a fixture document.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks that actor keys are unique and every movie references a known key.
func (fx *Fixture) Validate() error {
	keys := make(map[string]struct{}, len(fx.Actors))
	for i, a := range fx.Actors {
		key := strings.TrimSpace(a.Key)
		if key == "" {
			return fmt.Errorf("actor #%d: key is required", i+1)
		}
		if _, dup := keys[key]; dup {
			return fmt.Errorf("actor #%d: duplicate key %q", i+1, key)
		}
		keys[key] = struct{}{}
	}
	for i, m := range fx.Movies {
		for _, ref := range m.Actors {
			if _, ok := keys[strings.TrimSpace(ref)]; !ok {
				return fmt.Errorf("movie #%d (%s): unknown actor key %q", i+1, m.Title, ref)
			}
		}
	}
	return nil
}

// Apply creates every actor, then every movie, through the store.
// Movie writes go through CreateMovie so they share its all-or-nothing actor check.
func Apply(ctx context.Context, store catalog.Store, fx *Fixture, logger *log.Logger) (Result, error) {
	var res Result
	if logger == nil {
		logger = log.Default()
	}
	ids := make(map[string]int64, len(fx.Actors))
	for _, a := range fx.Actors {
		created, err := store.CreateActor(ctx, a.Name)
		if err != nil {
			return res, fmt.Errorf("create actor %q: %w", a.Key, err)
		}
		ids[strings.TrimSpace(a.Key)] = created.ID
		res.Actors++
		logger.Debug("seeded actor", "key", a.Key, "id", created.ID)
	}
	for _, m := range fx.Movies {
		params := catalog.MovieParams{Title: m.Title, Year: m.Year}
		for _, ref := range m.Actors {
			id, ok := ids[strings.TrimSpace(ref)]
			if !ok {
				return res, fmt.Errorf("movie %q: %w (key %q)", m.Title, catalog.ErrUnknownActor, ref)
			}
			params.ActorIDs = append(params.ActorIDs, id)
		}
		created, err := store.CreateMovie(ctx, params)
		if err != nil {
			return res, fmt.Errorf("create movie %q: %w", m.Title, err)
		}
		res.Movies++
		logger.Debug("seeded movie", "title", m.Title, "id", created.ID)
	}
	logger.Info("seed applied", "actors", res.Actors, "movies", res.Movies)
	return res, nil
}
