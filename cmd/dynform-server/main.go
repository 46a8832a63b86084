package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	dynform "github.com/goliatone/go-dynform"
	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/internal/server"
	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dynform-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load("dynform-server", os.Args[1:])
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging("dynform-server", os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := dynform.OpenCatalog(ctx, cfg.Catalog, logger, catalog.WithHTTPFallback(cfg.CatalogTimeout))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	srv, err := server.New(ctx, cat, server.WithLogger(logger))
	if err != nil {
		return err
	}

	return server.Run(ctx, server.RunConfig{Addr: cfg.Addr}, srv.Handler(), logger)
}
