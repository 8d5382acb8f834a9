package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slyt3/Gyre/internal/api"
	"github.com/slyt3/Gyre/internal/config"
	"github.com/slyt3/Gyre/internal/core"
	"github.com/slyt3/Gyre/internal/logging"
	"github.com/slyt3/Gyre/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func ServeCommand(args []string) error {
	serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := serveFlags.String("config", "", "Path to gyre.yaml")
	_ = serveFlags.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}
	return serve(ctx, ln, cfg, *cfgPath)
}

// serve runs the HTTP API on ln until ctx is done, then drains the journal.
func serve(ctx context.Context, ln net.Listener, cfg *config.Config, cfgPath string) error {
	logging.SetLevel(cfg.LogLevel)

	worker, err := startJournal(cfg.Journal.Path, cfg.Journal.QueueSize, cfg.Journal.Backpressure, "serve", cfg.Buffer.Capacity)
	if err != nil {
		_ = ln.Close()
		return err
	}

	reg := metrics.New()
	engine, err := core.NewEngine(cfg.Buffer.Capacity,
		core.WithJournal(worker),
		core.WithObserver(reg),
		core.WithActor("api"),
	)
	if err == nil {
		err = reg.RegisterBuffer(engine)
	}
	if err == nil {
		err = reg.RegisterJournal(worker)
	}
	if err != nil {
		_ = ln.Close()
		_ = worker.Shutdown(shutdownTimeout)
		return err
	}

	if cfgPath != "" {
		go watchConfig(ctx, cfgPath, cfg)
	}

	srv := &http.Server{
		Handler:           api.NewHandlers(engine, worker, reg).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logging.Info("server_started", logging.Fields{Component: "serve", RunID: worker.RunID(), Path: ln.Addr().String()})

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("server_shutdown_failed", logging.Fields{Component: "serve", Error: err.Error()})
	}
	if err := worker.Shutdown(shutdownTimeout); err != nil {
		logging.Error("journal_shutdown_failed", logging.Fields{Component: "serve", Error: err.Error()})
		if serveErr == nil {
			serveErr = err
		}
	}

	processed, dropped := worker.Stats()
	logging.Info("server_stopped", logging.Fields{
		Component: "serve",
		RunID:     worker.RunID(),
		Value:     fmt.Sprintf("processed=%d dropped=%d", processed, dropped),
	})
	return serveErr
}

// watchConfig applies log level changes live. Buffer, journal and server
// settings are fixed for the lifetime of a run.
func watchConfig(ctx context.Context, path string, current *config.Config) {
	err := config.Watch(ctx, path, func(next *config.Config) {
		logging.SetLevel(next.LogLevel)
		if next.Buffer.Capacity != current.Buffer.Capacity ||
			next.Journal != current.Journal ||
			next.Server != current.Server {
			logging.Warn("config_change_requires_restart", logging.Fields{Component: "serve", Path: path})
		}
	})
	if err != nil {
		logging.Error("config_watch_failed", logging.Fields{Component: "serve", Path: path, Error: err.Error()})
	}
}
