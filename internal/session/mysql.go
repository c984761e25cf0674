package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/01moynul/hidaaya-golang/internal/database"
)

// SQLBackend keeps visitor state in the visitor_sessions table.
type SQLBackend struct {
	DB database.DBTX
}

func NewSQLBackend(db database.DBTX) *SQLBackend {
	return &SQLBackend{DB: db}
}

func (b *SQLBackend) Load(ctx context.Context, id string, now time.Time) ([]byte, error) {
	var data []byte
	err := b.DB.QueryRowContext(ctx,
		`SELECT data FROM visitor_sessions WHERE id = ? AND expires_at > ?`,
		id, now.UTC(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *SQLBackend) Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error {
	_, err := b.DB.ExecContext(ctx, `
		INSERT INTO visitor_sessions (id, data, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data), expires_at = VALUES(expires_at), updated_at = VALUES(updated_at)`,
		id, data, expiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

// DeleteExpired removes sessions that expired before now.
func (b *SQLBackend) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := b.DB.ExecContext(ctx, `DELETE FROM visitor_sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
