package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/fieldbridge/internal/db"
)

// SQLiteProjectSequenceRepo allocates sequence values atomically using the
// project_sequences table.
type SQLiteProjectSequenceRepo struct {
	db db.DBTX
}

// NewSQLiteProjectSequenceRepo creates a new SQLiteProjectSequenceRepo.
func NewSQLiteProjectSequenceRepo(conn db.DBTX) *SQLiteProjectSequenceRepo {
	return &SQLiteProjectSequenceRepo{db: conn}
}

// Next returns the next value for scope, starting at 1 for a new scope.
// Allocation is atomic and safe under concurrent writes.
func (r *SQLiteProjectSequenceRepo) Next(ctx context.Context, scope string) (int, error) {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO project_sequences (scope, next_seq) VALUES (?, 1)`, scope); err != nil {
		return 0, fmt.Errorf("seeding sequence %s: %w", scope, err)
	}

	var next int
	allocQuery := `UPDATE project_sequences
		SET next_seq = next_seq + 1
		WHERE scope = ?
		RETURNING next_seq - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, scope).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next value for %s: %w", scope, err)
	}
	return next, nil
}
