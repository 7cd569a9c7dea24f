package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tokligence/moviegraph/internal/config"
)

// InitOptions configures the bootstrap process for generating config files.
type InitOptions struct {
	Root           string
	Environment    string
	HTTPAddress    string
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	LogLevel       string
	Force          bool
}

// Init scaffolds setting.ini and the per-environment moviegraph.ini.
func Init(opts InitOptions) error {
	applyDefaults(&opts)
	if err := Validate(opts); err != nil {
		return err
	}
	if err := ensureDir(filepath.Join(opts.Root, "config", opts.Environment)); err != nil {
		return err
	}

	settingPath := filepath.Join(opts.Root, "config", "setting.ini")
	if err := writeFile(settingPath, settingTemplate(opts), opts.Force); err != nil {
		return err
	}

	envPath := filepath.Join(opts.Root, "config", opts.Environment, "moviegraph.ini")
	return writeFile(envPath, envTemplate(opts), opts.Force)
}

func applyDefaults(opts *InitOptions) {
	if strings.TrimSpace(opts.Root) == "" {
		opts.Root = "."
	}
	if strings.TrimSpace(opts.Environment) == "" {
		opts.Environment = "dev"
	}
	if strings.TrimSpace(opts.HTTPAddress) == "" {
		opts.HTTPAddress = ":8080"
	}
	opts.DatabaseDriver = strings.ToLower(strings.TrimSpace(opts.DatabaseDriver))
	if opts.DatabaseDriver == "" {
		opts.DatabaseDriver = config.DriverSQLite
	}
	if opts.DatabaseDriver == config.DriverSQLite && strings.TrimSpace(opts.DatabasePath) == "" {
		opts.DatabasePath = config.DefaultDatabasePath()
	}
	if strings.TrimSpace(opts.LogLevel) == "" {
		opts.LogLevel = "info"
	}
}

// Validate ensures the options describe a loadable configuration without touching files.
func Validate(opts InitOptions) error {
	applyDefaults(&opts)
	switch opts.DatabaseDriver {
	case config.DriverSQLite:
	case config.DriverPostgres:
		if strings.TrimSpace(opts.DatabaseDSN) == "" {
			return errors.New("database dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", opts.DatabaseDriver)
	}
	return nil
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func writeFile(path, contents string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}

func settingTemplate(opts InitOptions) string {
	return fmt.Sprintf(`# moviegraph settings
environment=%s
log_level=%s
`, opts.Environment, opts.LogLevel)
}

func envTemplate(opts InitOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Environment specific overrides for %s\n", opts.Environment)
	fmt.Fprintf(&b, "http_address=%s\n", opts.HTTPAddress)
	fmt.Fprintf(&b, "database_driver=%s\n", opts.DatabaseDriver)
	if opts.DatabaseDriver == config.DriverPostgres {
		fmt.Fprintf(&b, "database_dsn=%s\n", opts.DatabaseDSN)
		b.WriteString("postgres_driver=pgx\n")
	} else {
		fmt.Fprintf(&b, "database_path=%s\n", opts.DatabasePath)
	}
	b.WriteString("# Dash '-' or empty disables file output.\n")
	b.WriteString("log_file=logs/moviegraph.log\n")
	b.WriteString("playground_enabled=true\n")
	return b.String()
}
