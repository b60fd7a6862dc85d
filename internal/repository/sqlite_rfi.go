package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/fieldbridge/internal/db"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// SQLiteRFIRepo implements RFIRepo using a SQLite database.
type SQLiteRFIRepo struct {
	db db.DBTX
}

// NewSQLiteRFIRepo creates a new SQLiteRFIRepo.
func NewSQLiteRFIRepo(conn db.DBTX) *SQLiteRFIRepo {
	return &SQLiteRFIRepo{db: conn}
}

const rfiColumns = `id, project_id, number, question, location, status, due_date, created_at, updated_at`

func (r *SQLiteRFIRepo) Create(ctx context.Context, rfi *domain.RFI) error {
	query := `INSERT INTO rfis (` + rfiColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rfi.ID, rfi.ProjectID, rfi.Number, rfi.Question, rfi.Location, string(rfi.Status),
		nullableTimeToString(rfi.DueDate, dateLayout),
		formatTimestamp(rfi.CreatedAt), formatTimestamp(rfi.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting rfi: %w", err)
	}
	return nil
}

func (r *SQLiteRFIRepo) GetByID(ctx context.Context, id string) (*domain.RFI, error) {
	query := `SELECT ` + rfiColumns + ` FROM rfis WHERE id = ?`
	rfi, err := scanRFI(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rfi %s: %w", id, domain.ErrNotFound)
	}
	return rfi, err
}

func (r *SQLiteRFIRepo) ListByProject(ctx context.Context, projectID string, statuses ...domain.RFIStatus) ([]*domain.RFI, error) {
	query := `SELECT ` + rfiColumns + ` FROM rfis WHERE project_id = ?`
	args := []any{projectID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + inClause(len(statuses)) + `)`
		args = append(args, stringArgs(statuses)...)
	}
	query += ` ORDER BY due_date IS NULL, due_date, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rfis: %w", err)
	}
	defer rows.Close()

	var rfis []*domain.RFI
	for rows.Next() {
		rfi, err := scanRFI(rows)
		if err != nil {
			return nil, err
		}
		rfis = append(rfis, rfi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rfis: %w", err)
	}
	return rfis, nil
}

func (r *SQLiteRFIRepo) Update(ctx context.Context, rfi *domain.RFI) error {
	query := `UPDATE rfis SET number = ?, question = ?, location = ?, status = ?, due_date = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		rfi.Number, rfi.Question, rfi.Location, string(rfi.Status),
		nullableTimeToString(rfi.DueDate, dateLayout), formatTimestamp(rfi.UpdatedAt),
		rfi.ID,
	)
	if err != nil {
		return fmt.Errorf("updating rfi: %w", err)
	}
	return nil
}

func scanRFI(s scanner) (*domain.RFI, error) {
	var rfi domain.RFI
	var status, createdAt, updatedAt string
	var dueDate sql.NullString

	err := s.Scan(&rfi.ID, &rfi.ProjectID, &rfi.Number, &rfi.Question, &rfi.Location, &status,
		&dueDate, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning rfi: %w", err)
	}

	rfi.Status = domain.RFIStatus(status)
	rfi.DueDate = parseNullableTime(dueDate, dateLayout)
	if rfi.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if rfi.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &rfi, nil
}
