package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/fieldbridge/internal/db"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// SQLiteConstraintRepo implements ConstraintRepo using a SQLite database.
type SQLiteConstraintRepo struct {
	db db.DBTX
}

// NewSQLiteConstraintRepo creates a new SQLiteConstraintRepo.
func NewSQLiteConstraintRepo(conn db.DBTX) *SQLiteConstraintRepo {
	return &SQLiteConstraintRepo{db: conn}
}

const constraintColumns = `id, project_id, description, type, area, owner_name, due_date, is_resolved, created_at, updated_at`

func (r *SQLiteConstraintRepo) Create(ctx context.Context, c *domain.Constraint) error {
	query := `INSERT INTO project_constraints (` + constraintColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.ProjectID, c.Description, c.Type, c.Area, c.OwnerName,
		nullableTimeToString(c.DueDate, dateLayout), boolToInt(c.IsResolved),
		formatTimestamp(c.CreatedAt), formatTimestamp(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting constraint: %w", err)
	}
	return nil
}

func (r *SQLiteConstraintRepo) GetByID(ctx context.Context, id string) (*domain.Constraint, error) {
	query := `SELECT ` + constraintColumns + ` FROM project_constraints WHERE id = ?`
	c, err := scanConstraint(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("constraint %s: %w", id, domain.ErrNotFound)
	}
	return c, err
}

func (r *SQLiteConstraintRepo) ListByProject(ctx context.Context, projectID string, resolved *bool) ([]*domain.Constraint, error) {
	query := `SELECT ` + constraintColumns + ` FROM project_constraints WHERE project_id = ?`
	args := []any{projectID}
	if resolved != nil {
		query += ` AND is_resolved = ?`
		args = append(args, boolToInt(*resolved))
	}
	query += ` ORDER BY due_date IS NULL, due_date, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing constraints: %w", err)
	}
	defer rows.Close()

	var out []*domain.Constraint
	for rows.Next() {
		c, err := scanConstraint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating constraints: %w", err)
	}
	return out, nil
}

func (r *SQLiteConstraintRepo) Update(ctx context.Context, c *domain.Constraint) error {
	query := `UPDATE project_constraints SET description = ?, type = ?, area = ?, owner_name = ?, due_date = ?,
		is_resolved = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		c.Description, c.Type, c.Area, c.OwnerName, nullableTimeToString(c.DueDate, dateLayout),
		boolToInt(c.IsResolved), formatTimestamp(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating constraint: %w", err)
	}
	return nil
}

func scanConstraint(s scanner) (*domain.Constraint, error) {
	var c domain.Constraint
	var resolved int
	var createdAt, updatedAt string
	var dueDate sql.NullString

	err := s.Scan(&c.ID, &c.ProjectID, &c.Description, &c.Type, &c.Area, &c.OwnerName, &dueDate,
		&resolved, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning constraint: %w", err)
	}

	c.IsResolved = intToBool(resolved)
	c.DueDate = parseNullableTime(dueDate, dateLayout)
	if c.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &c, nil
}
