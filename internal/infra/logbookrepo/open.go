package logbookrepo

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/familylog/internal/domain/logbook"
	"github.com/yanqian/familylog/internal/infra/config"
)

// Open picks the first usable backend: Postgres, then SQLite, then memory.
// The returned cleanup releases connections.
func Open(cfg config.StorageConfig, logger *slog.Logger) (logbook.Repository, func(), error) {
	if dsn := strings.TrimSpace(cfg.Postgres.DSN); dsn != "" {
		repo, cleanup, err := openPostgres(cfg.Postgres)
		if err == nil {
			logger.Info("logbook postgres repository enabled")
			return repo, cleanup, nil
		}
		logger.Error("postgres unavailable, trying next backend", "error", err)
	}
	if path := strings.TrimSpace(cfg.SQLite.Path); path != "" {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("logbook sqlite repository enabled", "path", path)
		return repo, func() { _ = repo.Close() }, nil
	}
	logger.Info("no storage configured, using memory repository")
	return NewMemoryRepository(), func() {}, nil
}

func openPostgres(cfg config.PostgresConfig) (logbook.Repository, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	repo := NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repo, pool.Close, nil
}
