package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gotd/td/session"
	"go.uber.org/fx"

	"trade_relay/internal/modules/config"
	"trade_relay/internal/modules/storage/service"
	"trade_relay/pkg/db"
)

// Module выбирает хранилище сессии мессенджера: Postgres при заданном
// DSN, иначе файл на диске (локальный запуск без базы).
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (session.Storage, error) {
				if cfg.DB == "" {
					path := filepath.Join("data", cfg.Telegram.SessionName+".session.json")
					if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
						return nil, fmt.Errorf("session dir: %w", err)
					}
					return &session.FileStorage{Path: path}, nil
				}

				pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}
				if err := pool.Ping(ctx); err != nil {
					return nil, err
				}

				return service.NewPgSession(ctx, db.NewPgTxManager(pool), cfg.Telegram.SessionName)
			},
		),
	)
}
