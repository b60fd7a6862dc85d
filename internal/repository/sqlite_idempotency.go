package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/fieldbridge/internal/db"
)

// SQLiteIdempotencyRepo remembers which resource a client submission token
// already produced, so a retried create returns the original record.
type SQLiteIdempotencyRepo struct {
	db db.DBTX
}

// NewSQLiteIdempotencyRepo creates a new SQLiteIdempotencyRepo.
func NewSQLiteIdempotencyRepo(conn db.DBTX) *SQLiteIdempotencyRepo {
	return &SQLiteIdempotencyRepo{db: conn}
}

// Lookup returns the record for key, or nil when the key is new.
func (r *SQLiteIdempotencyRepo) Lookup(ctx context.Context, key string) (*IdempotencyRecord, error) {
	rec := IdempotencyRecord{Key: key}
	err := r.db.QueryRowContext(ctx,
		`SELECT operation, resource_id FROM idempotency_keys WHERE key = ?`, key,
	).Scan(&rec.Operation, &rec.ResourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up idempotency key: %w", err)
	}
	return &rec, nil
}

func (r *SQLiteIdempotencyRepo) Record(ctx context.Context, key, operation, resourceID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_keys (key, operation, resource_id, created_at) VALUES (?, ?, ?, ?)`,
		key, operation, resourceID, nowUTC())
	if err != nil {
		return fmt.Errorf("recording idempotency key: %w", err)
	}
	return nil
}
