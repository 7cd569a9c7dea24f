package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/tokligence/moviegraph/internal/app"
	"github.com/tokligence/moviegraph/internal/config"
)

func main() {
	root := flag.String("root", ".", "directory containing config/")
	flag.Parse()

	cfg, err := config.Load(*root)
	if err != nil {
		log.Fatal("load config failed", "err", err)
	}
	logger, closer, err := app.NewLogger(cfg, "moviegraphd")
	if err != nil {
		log.Fatal("init logger failed", "err", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := app.Serve(ctx, cfg, logger); err != nil {
		logger.Error("moviegraphd exited", "err", err)
		closer.Close()
		os.Exit(1)
	}
}
