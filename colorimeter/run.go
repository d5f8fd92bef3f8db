package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/itohio/gocolorimeter/pkg/colorstore"
	"github.com/itohio/gocolorimeter/pkg/colorstore/badgerstore"
	"github.com/itohio/gocolorimeter/pkg/colorstore/filestore"
	"github.com/itohio/gocolorimeter/pkg/command"
	"github.com/itohio/gocolorimeter/pkg/config"
	"github.com/itohio/gocolorimeter/pkg/device"
	"github.com/itohio/gocolorimeter/pkg/engine"
	"github.com/itohio/gocolorimeter/pkg/metrics"
	"github.com/itohio/gocolorimeter/pkg/shell"
)

// openStore opens the configured color store backend.
func openStore(cfg config.StoreConfig) (colorstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return colorstore.NewMemory(), nil
	case config.BackendFile:
		return filestore.Open(cfg.Path)
	case config.BackendBadger:
		return badgerstore.Open(badgerstore.Config{Path: cfg.Path, SyncWrites: true})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// run wires the simulated instrument to the shell on in/out and blocks until
// the operator exits, the input ends or ctx is done.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	dev := device.NewMock(&cfg.Mock)
	if err := dev.Connect(); err != nil {
		return fmt.Errorf("failed to connect device: %w", err)
	}
	defer dev.Close()

	store, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open color store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing color store: %v", err)
		}
	}()

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	output := shell.NewOutput(out)

	e := engine.New(dev, store, output, engine.Options{
		Timing:   cfg.Timing,
		Observer: collector,
	})
	if err := e.Load(ctx); err != nil {
		return err
	}

	dispatcher := command.NewDispatcher(e, output, collector)
	dispatcher.Prompt = cfg.Shell.Prompt
	sampler := engine.NewSampler(e, cfg.Timing.PeriodUnit)

	var echo io.Writer
	if cfg.Serial.Echo {
		echo = out
	}
	lr := shell.NewLineReader(in, cfg.Shell.MaxLine, echo)

	if err := e.Do(ctx, (*engine.Session).SelfTest); err != nil {
		log.Printf("Self test failed: %v", err)
	}
	if cfg.Shell.Banner {
		dispatcher.Banner()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sampler.Run(gctx)
	})
	if cfg.Metrics.Listen != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Listen, reg)
		})
	}

	// Reads block without honoring ctx, so the shell runs outside the group.
	served := make(chan error, 1)
	go func() {
		served <- dispatcher.Serve(gctx, lr, sampler)
	}()
	g.Go(func() error {
		select {
		case err := <-served:
			cancel()
			return err
		case <-gctx.Done():
			return nil
		}
	})

	err = g.Wait()

	if offErr := e.Do(context.Background(), (*engine.Session).AllOff); offErr != nil {
		log.Printf("Error switching LEDs off: %v", offErr)
	}

	return err
}
