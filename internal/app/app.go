// Package app assembles the service graph shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cenniki/pricelist-service/config"
	"github.com/cenniki/pricelist-service/internal/changeset"
	httpclient "github.com/cenniki/pricelist-service/internal/http"
	"github.com/cenniki/pricelist-service/internal/notify"
	"github.com/cenniki/pricelist-service/internal/producers"
	"github.com/cenniki/pricelist-service/internal/reconcile"
	"github.com/cenniki/pricelist-service/internal/scheduler"
	"github.com/cenniki/pricelist-service/internal/storage"
)

// ServiceName is the service field of every log line
const ServiceName = "pricelist-service"

// App holds the wired services
type App struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Storage    *storage.LocalStorage
	Catalogs   *producers.Repository
	ChangeSets *changeset.Service
	Trigger    *scheduler.Trigger
	// Pool is set when change-sets live in postgres
	Pool *pgxpool.Pool

	closers []func() error
}

// NewLogger builds the zerolog logger described by cfg
func NewLogger(cfg config.LoggingConfig, out io.Writer) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if out == nil {
		out = os.Stdout
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("service", ServiceName).Logger()
	return &logger
}

// New wires storage, the change-set store, the reconcile engine and the trigger.
// source labels runs started through this App in metrics.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, source string) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := reconcile.ParsePolicy(cfg.Reconcile.Policy)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}

	a.Storage, err = storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	registry, err := producers.NewRegistry(cfg.ProducerList())
	if err != nil {
		return nil, fmt.Errorf("invalid producers: %w", err)
	}
	a.Catalogs = producers.NewRepository(registry, a.Storage, logger)

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ChangeSets = changeset.NewService(store, changeset.Options{
		RetainCancelled: cfg.ChangeSets.RetainCancelled,
		Location:        loc,
	}, logger)

	notifier, err := NewNotifier(cfg.Notify, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Trigger = scheduler.NewTrigger(
		a.ChangeSets,
		a.Catalogs,
		reconcile.NewEngine(policy, logger),
		notifier,
		logger,
		scheduler.Options{NotifyTimeout: cfg.Scheduler.NotifyTimeout, Source: source},
	)

	logger.Info().
		Str("storage", cfg.Storage.BasePath).
		Str("changesets", cfg.Storage.ChangeSets).
		Str("policy", string(policy)).
		Int("producers", len(registry.List())).
		Msg("Services initialised")
	return a, nil
}

func (a *App) openStore(ctx context.Context) (changeset.Store, error) {
	cfg := a.Config
	switch cfg.Storage.ChangeSets {
	case config.BackendSQLite:
		store, err := changeset.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite change-set store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil

	case config.BackendPostgres:
		pool, err := changeset.Connect(
			ctx,
			cfg.Database.URL,
			cfg.Database.MaxConnections,
			cfg.Database.MinConnections,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.Pool = pool
		a.closers = append(a.closers, func() error { pool.Close(); return nil })

		store := changeset.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate change-set table: %w", err)
		}
		return store, nil

	default:
		return changeset.NewFileStore(a.Storage), nil
	}
}

// NewNotifier combines every configured notification channel
func NewNotifier(cfg config.NotifyConfig, logger *zerolog.Logger) (notify.Notifier, error) {
	var out notify.Multi

	if cfg.Log {
		out = append(out, notify.NewLogNotifier(logger))
	}
	if cfg.SMTP.Enabled() {
		email, err := notify.NewEmailNotifier(cfg.SMTP, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	if cfg.Webhook.URL != "" {
		out = append(out, notify.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Token, httpclient.NewClient(cfg.Webhook.Client)))
	}

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// Ping checks that storage is reachable, and the database when one is used
func (a *App) Ping(ctx context.Context) error {
	if _, err := a.Storage.Exists(ctx, changeset.CollectionKey); err != nil {
		return err
	}
	if a.Pool != nil {
		return a.Pool.Ping(ctx)
	}
	return nil
}

// Close waits for pending notifications and releases store connections
func (a *App) Close() error {
	if a.Trigger != nil {
		a.Trigger.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
