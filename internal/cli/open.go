package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasklist/internal/config"
	"github.com/Makepad-fr/tasklist/internal/store"
	"github.com/Makepad-fr/tasklist/internal/store/jsonstore"
	"github.com/Makepad-fr/tasklist/internal/store/memstore"
	"github.com/Makepad-fr/tasklist/internal/store/sqlstore"
)

// OpenStorage builds the backend named by cfg. close releases it and is never nil.
func OpenStorage(ctx context.Context, cfg *config.Config) (store.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendFile:
		return jsonstore.New(cfg.Dir, cfg.Key), noop, nil

	case config.BackendMemory:
		return memstore.New(), noop, nil

	case config.BackendSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			if err := cfg.EnsureDir(); err != nil {
				return nil, noop, fmt.Errorf("data dir: %w", err)
			}
			dsn = cfg.SQLitePath()
		}
		return openSQL(ctx, sqlstore.SQLite, dsn, cfg.Key)

	case config.BackendPostgres:
		return openSQL(ctx, sqlstore.Postgres, cfg.DSN, cfg.Key)

	case config.BackendMySQL:
		return openSQL(ctx, sqlstore.MySQL, cfg.DSN, cfg.Key)
	}
	return nil, noop, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func openSQL(ctx context.Context, d sqlstore.Dialect, dsn, key string) (store.Storage, func() error, error) {
	s, err := sqlstore.Open(ctx, d, dsn, key)
	if err != nil {
		return nil, func() error { return nil }, fmt.Errorf("open %s: %w", d, err)
	}
	return s, s.Close, nil
}

// OpenStore opens the configured backend and loads the task list from it.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Store, func() error, error) {
	st, closeFn, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, closeFn, err
	}
	s := store.New(st,
		store.WithMinLength(cfg.EffectiveMinLength()),
		store.WithProfile(cfg.Profile),
		store.WithLogger(logger),
	)
	if _, err := s.Load(ctx); err != nil {
		closeFn()
		return nil, func() error { return nil }, fmt.Errorf("load: %w", err)
	}
	logger.Debug("opened task list", "backend", cfg.Backend, "key", cfg.Key, "tasks", len(s.Tasks()))
	return s, closeFn, nil
}
