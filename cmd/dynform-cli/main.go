package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	dynform "github.com/goliatone/go-dynform"
	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/pkg/catalog"
	"github.com/goliatone/go-dynform/pkg/formstate"
	"github.com/goliatone/go-dynform/pkg/logging"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
	"github.com/goliatone/go-dynform/pkg/session"
	"github.com/goliatone/go-dynform/pkg/submission"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "dynform-cli: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load("dynform-cli", os.Args[1:])
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging("dynform-cli", os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := dynform.ResolveSource(cfg.Catalog)
	if err != nil {
		return err
	}
	cat, err := dynform.OpenCatalog(ctx, cfg.Catalog, logger, catalog.WithHTTPFallback(cfg.CatalogTimeout))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var record map[string]any
	if cfg.Record != "" {
		if record, err = dynform.LoadRecord(cfg.Record); err != nil {
			return err
		}
	}

	renderer, err := tui.New(
		tui.WithOutputFormat(tui.OutputFormat(cfg.OutputFormat)),
		tui.WithOutput(os.Stdout),
		tui.WithLogger(logger),
		tui.WithNormalizer(submission.New(submission.WithLogger(logger))),
	)
	if err != nil {
		return err
	}

	resolver, surface, err := dynform.StartSession(ctx, cat, src, record, formstate.Options{}, session.WithLogger(logger))
	if err != nil {
		return err
	}
	sub, err := renderer.Run(ctx, resolver, surface)
	if err != nil {
		return err
	}

	payload, err := renderer.Encode(sub)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(append(payload, '\n')); err != nil {
		return err
	}
	return nil
}
