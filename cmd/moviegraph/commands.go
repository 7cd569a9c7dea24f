package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tokligence/moviegraph/internal/app"
	"github.com/tokligence/moviegraph/internal/bootstrap"
	"github.com/tokligence/moviegraph/internal/config"
	"github.com/tokligence/moviegraph/internal/graphql"
	"github.com/tokligence/moviegraph/internal/version"
)

type rootOptions struct {
	root    string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "moviegraph",
		Short:        "GraphQL API over a movie and actor catalog",
		Version:      version.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(version.Get().String() + "\n")
	root.PersistentFlags().StringVar(&opts.root, "root", ".", "directory containing config/")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// load reads config and builds the logger every command shares.
func (o *rootOptions) load(prefix string) (config.Config, *log.Logger, io.Closer, error) {
	cfg, err := config.Load(o.root)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	logger, closer, err := app.NewLogger(cfg, prefix)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, closer, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := opts.load("moviegraph")
			if err != nil {
				return err
			}
			defer closer.Close()
			if addr != "" {
				cfg.HTTPAddress = addr
			}
			return app.Serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http_address)")
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load actors and movies from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := opts.load("moviegraph")
			if err != nil {
				return err
			}
			defer closer.Close()

			store, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := app.SeedFile(cmd.Context(), store, args[0], logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d actors, %d movies\n", res.Actors, res.Movies)
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the validated GraphQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), graphql.SDL())
				return nil
			}
			sdl, err := graphql.PrintSchema()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sdl)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the embedded SDL as served, without reformatting")
	return cmd
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	initOpts := bootstrap.InitOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold config/setting.ini and the environment config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOpts.Root = opts.root
			if err := bootstrap.Init(initOpts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config written under %s/config\n", opts.root)
			return nil
		},
	}
	cmd.Flags().StringVar(&initOpts.Environment, "env", "dev", "environment name")
	cmd.Flags().StringVar(&initOpts.HTTPAddress, "http-address", ":8080", "listen address")
	cmd.Flags().StringVar(&initOpts.DatabaseDriver, "driver", config.DriverSQLite, "sqlite or postgres")
	cmd.Flags().StringVar(&initOpts.DatabasePath, "db-path", "", "sqlite database file")
	cmd.Flags().StringVar(&initOpts.DatabaseDSN, "dsn", "", "postgres DSN")
	cmd.Flags().BoolVar(&initOpts.Force, "force", false, "overwrite existing files")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
