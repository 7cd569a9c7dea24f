package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	settingsFile     = "config/setting.ini"
	defaultEnv       = "dev"
	envConfigPattern = "config/%s/moviegraph.ini"
	envPrefix        = "MOVIEGRAPH_"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Settings contains global toggles such as the active environment.
type Settings struct {
	Environment string
	Defaults    map[string]string
}

// Config describes runtime options for the daemon and CLI.
type Config struct {
	Environment string
	HTTPAddress string

	// Storage
	DatabaseDriver    string // sqlite|postgres
	DatabasePath      string // sqlite file
	DatabaseDSN       string // postgres DSN
	PostgresDriver    string // pgx|postgres
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Logging
	LogFile     string
	LogMaxBytes int64
	LogLevel    string

	// GraphQL
	PlaygroundEnabled bool
	GraphQLMaxDepth   int

	// Optional YAML fixture applied at startup
	SeedFile string
	// Directory holding the persistent instance id
	InstanceDir string

	ShutdownTimeout time.Duration
}

// Load reads the current environment and loads the appropriate config file.
// Precedence: MOVIEGRAPH_* env > config/<env>/moviegraph.ini > config/setting.ini > defaults.
func Load(root string) (Config, error) {
	if root == "" {
		root = "."
	}
	s, err := loadSettings(root)
	if err != nil {
		return Config{}, err
	}
	if env := strings.TrimSpace(os.Getenv(envPrefix + "ENVIRONMENT")); env != "" {
		s.Environment = env
	}

	envValues, err := parseINI(filepath.Join(root, fmt.Sprintf(envConfigPattern, s.Environment)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			envValues = map[string]string{}
		} else {
			return Config{}, err
		}
	}

	merged := make(map[string]string)
	for k, v := range s.Defaults {
		merged[k] = v
	}
	for k, v := range envValues {
		merged[k] = v
	}
	get := func(key string, fallbacks ...string) string {
		values := append([]string{os.Getenv(envPrefix + strings.ToUpper(key)), merged[key]}, fallbacks...)
		return firstNonEmpty(values...)
	}

	cfg := Config{
		Environment:       s.Environment,
		HTTPAddress:       get("http_address", ":8080"),
		DatabaseDriver:    strings.ToLower(strings.TrimSpace(get("database_driver", DriverSQLite))),
		DatabasePath:      get("database_path", DefaultDatabasePath()),
		DatabaseDSN:       get("database_dsn"),
		PostgresDriver:    strings.ToLower(strings.TrimSpace(get("postgres_driver", "pgx"))),
		LogFile:           get("log_file"),
		LogLevel:          get("log_level", "info"),
		PlaygroundEnabled: parseOptionalBool(get("playground_enabled"), true),
		SeedFile:          get("seed_file"),
		InstanceDir:       get("instance_dir", DefaultInstanceDir()),
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseDSN) == "" {
			return Config{}, errors.New("database_dsn is required when database_driver=postgres")
		}
	default:
		return Config{}, fmt.Errorf("invalid database_driver %q", cfg.DatabaseDriver)
	}

	if cfg.DBMaxOpenConns, err = parseInt("db_max_open_conns", get("db_max_open_conns"), 25); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxIdleConns, err = parseInt("db_max_idle_conns", get("db_max_idle_conns"), 5); err != nil {
		return Config{}, err
	}
	if cfg.GraphQLMaxDepth, err = parseInt("graphql_max_depth", get("graphql_max_depth"), 12); err != nil {
		return Config{}, err
	}
	maxLogMB, err := parseInt("log_max_mb", get("log_max_mb"), 300)
	if err != nil {
		return Config{}, err
	}
	cfg.LogMaxBytes = int64(maxLogMB) * 1024 * 1024
	if cfg.DBConnMaxLifetime, err = parseDuration("db_conn_max_lifetime", get("db_conn_max_lifetime"), 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("shutdown_timeout", get("shutdown_timeout"), 10*time.Second); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadSettings(root string) (Settings, error) {
	values, err := parseINI(filepath.Join(root, settingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return Settings{Environment: defaultEnv, Defaults: map[string]string{}}, nil
	}
	if err != nil {
		return Settings{}, err
	}
	env := values["environment"]
	if env == "" {
		env = defaultEnv
	}
	defaults := make(map[string]string)
	for k, v := range values {
		if k == "environment" {
			continue
		}
		defaults[k] = v
	}
	return Settings{Environment: env, Defaults: defaults}, nil
}

func parseINI(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		values[strings.ToLower(key)] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseOptionalBool(v string, fallback bool) bool {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return parseBool(v)
}

func parseInt(key, v string, fallback int) (int, error) {
	if strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

func parseDuration(key, v string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	dur, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return dur, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DefaultDatabasePath returns the fallback SQLite location under the user's home directory.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "movies.db"
	}
	return filepath.Join(home, ".moviegraph", "movies.db")
}

// DefaultInstanceDir returns the directory holding the instance id file.
func DefaultInstanceDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".moviegraph"
	}
	return filepath.Join(home, ".moviegraph")
}
