package service

import (
	"context"
	"fmt"

	"github.com/gotd/td/session"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"trade_relay/pkg/db"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS telegram_sessions (
	name       text PRIMARY KEY,
	data       bytea NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// PgSession хранит MTProto-сессию в Postgres, чтобы fast-path
// "уже авторизован" переживал рестарты процесса.
type PgSession struct {
	txm  db.TxManager
	name string
}

func NewPgSession(ctx context.Context, txm db.TxManager, name string) (*PgSession, error) {
	if _, err := txm.Conn().Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create telegram_sessions: %w", err)
	}
	return &PgSession{
		txm:  txm,
		name: name,
	}, nil
}

func (s *PgSession) LoadSession(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.txm.Conn().QueryRow(ctx,
		`SELECT data FROM telegram_sessions WHERE name = $1`, s.name,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("PgSession.LoadSession: %w", err)
	}
	return data, nil
}

func (s *PgSession) StoreSession(ctx context.Context, data []byte) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgSession.StoreSession: %w", err)
		}
	}()
	return s.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO telegram_sessions (name, data)
			 VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
			s.name, data,
		)
		return err
	})
}
