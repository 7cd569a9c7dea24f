package postgres

// schema contains the catalog table definitions.
const schema = `
-- ==============================================================================
-- Actors
-- ==============================================================================
CREATE TABLE IF NOT EXISTS actors (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL DEFAULT ''
);

-- ==============================================================================
-- Movies
-- ==============================================================================
CREATE TABLE IF NOT EXISTS movies (
    id    BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    year  INTEGER NOT NULL DEFAULT 0
);

-- ==============================================================================
-- Movie <-> Actor relationship set
-- ==============================================================================
CREATE TABLE IF NOT EXISTS movie_actors (
    movie_id BIGINT NOT NULL REFERENCES movies(id),
    actor_id BIGINT NOT NULL REFERENCES actors(id),
    PRIMARY KEY (movie_id, actor_id)
);

CREATE INDEX IF NOT EXISTS idx_movie_actors_actor ON movie_actors(actor_id);
`
