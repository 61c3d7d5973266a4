package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/statsmd/internal/api"
	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/platform/cache"
	"github.com/p-n-ai/statsmd/internal/platform/config"
	"github.com/p-n-ai/statsmd/internal/platform/database"
	"github.com/p-n-ai/statsmd/internal/platform/logging"
	"github.com/p-n-ai/statsmd/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	res, err := openResources(ctx, cfg)
	if err != nil {
		return err
	}
	defer res.Close()

	store := session.Open(ctx, res.storage, session.WithEventLogger(res.events))
	handler := api.New(cat, store)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		handler.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// resources are the backends opened for one run, closed in reverse order.
type resources struct {
	storage session.Storage
	events  session.EventLogger
	closers []func()
}

func (r *resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func openResources(ctx context.Context, cfg *config.Config) (_ *resources, err error) {
	res := &resources{events: session.NopEventLogger{}}
	defer func() {
		if err != nil {
			res.Close()
		}
	}()

	var db *database.DB
	if cfg.NeedsDatabase() {
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		res.closers = append(res.closers, db.Close)
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		res.storage = session.NewMemoryStorage()
	case config.DriverFile:
		res.storage, err = session.NewFileStorage(cfg.Storage.Dir)
	case config.DriverSQLite:
		var s *session.SQLiteStorage
		if s, err = session.OpenSQLiteStorage(ctx, cfg.Storage.SQLitePath); err == nil {
			res.storage = s
			res.closers = append(res.closers, func() { s.Close() })
		}
	case config.DriverRedis:
		var c *cache.Cache
		if c, err = cache.New(ctx, cfg.Cache.URL); err == nil {
			res.storage = session.NewRedisStorage(c)
			res.closers = append(res.closers, func() { c.Close() })
		}
	case config.DriverPostgres:
		res.storage, err = session.NewPostgresStorage(ctx, db)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}

	if cfg.EventLog {
		l, err := session.NewPostgresEventLogger(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		res.events = l
	}

	slog.Info("storage ready", "driver", cfg.Storage.Driver, "event_log", cfg.EventLog)
	return res, nil
}
