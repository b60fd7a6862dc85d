package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/fieldbridge/internal/db"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, project_id, title, description, assignee_id, created_by_id, priority, status,
	blocked_from, due_date, acknowledged_at, completed_at, created_at, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.ProjectID, t.Title, t.Description, t.AssigneeID, t.CreatedByID,
		string(t.Priority), string(t.Status), string(t.BlockedFrom),
		nullableTimeToString(t.DueDate, dateLayout),
		nullableTimeToString(t.AcknowledgedAt, timestampLayout),
		nullableTimeToString(t.CompletedAt, timestampLayout),
		formatTimestamp(t.CreatedAt), formatTimestamp(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return t, err
}

func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string, statuses ...domain.TaskStatus) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ?`
	args := []any{projectID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + inClause(len(statuses)) + `)`
		args = append(args, stringArgs(statuses)...)
	}
	query += ` ORDER BY due_date IS NULL, due_date, created_at`
	return r.list(ctx, query, args...)
}

func (r *SQLiteTaskRepo) ListByAssignee(ctx context.Context, assigneeID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assignee_id = ?
		ORDER BY due_date IS NULL, due_date, created_at`
	return r.list(ctx, query, assigneeID)
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, assignee_id = ?, priority = ?, status = ?,
		blocked_from = ?, due_date = ?, acknowledged_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.AssigneeID, string(t.Priority), string(t.Status), string(t.BlockedFrom),
		nullableTimeToString(t.DueDate, dateLayout),
		nullableTimeToString(t.AcknowledgedAt, timestampLayout),
		nullableTimeToString(t.CompletedAt, timestampLayout),
		formatTimestamp(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteTaskRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var priority, status, blockedFrom, createdAt, updatedAt string
	var dueDate, ackAt, completedAt sql.NullString

	err := s.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssigneeID, &t.CreatedByID, &priority, &status,
		&blockedFrom, &dueDate, &ackAt, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.Priority = domain.TaskPriority(priority)
	t.Status = domain.TaskStatus(status)
	t.BlockedFrom = domain.TaskStatus(blockedFrom)
	t.DueDate = parseNullableTime(dueDate, dateLayout)
	t.AcknowledgedAt = parseNullableTime(ackAt, time.RFC3339)
	t.CompletedAt = parseNullableTime(completedAt, time.RFC3339)

	if t.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}
