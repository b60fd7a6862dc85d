package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/fieldbridge/internal/db"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, number, name, description, status, address, city, state, latitude, longitude,
	client_name, contract_value, source_quote_id, created_by_id, created_by_name, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, nullableString(p.Number), p.Name, p.Description, string(p.Status),
		p.Address, p.City, p.State, nullableFloat(p.Latitude), nullableFloat(p.Longitude),
		p.ClientName, nullableFloat(p.ContractValue), nullableString(p.SourceQuoteID),
		p.CreatedByID, p.CreatedByName,
		formatTimestamp(p.CreatedAt), formatTimestamp(p.UpdatedAt),
	)
	if err != nil {
		return wrapInsertErr(err, "project")
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return p, err
}

func (r *SQLiteProjectRepo) GetBySourceQuote(ctx context.Context, quoteID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE source_quote_id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, quoteID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project for quote %s: %w", quoteID, domain.ErrNotFound)
	}
	return p, err
}

func (r *SQLiteProjectRepo) List(ctx context.Context, f ProjectFilter) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if len(f.Statuses) > 0 {
		query += ` WHERE status IN (` + inClause(len(f.Statuses)) + `)`
		args = append(args, stringArgs(f.Statuses)...)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET name = ?, description = ?, status = ?, address = ?, city = ?, state = ?,
		latitude = ?, longitude = ?, client_name = ?, contract_value = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.Description, string(p.Status), p.Address, p.City, p.State,
		nullableFloat(p.Latitude), nullableFloat(p.Longitude), p.ClientName, nullableFloat(p.ContractValue),
		formatTimestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteProjectRepo) CountByStatus(ctx context.Context) (map[domain.ProjectStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM projects GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting projects: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ProjectStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning project count: %w", err)
		}
		counts[domain.ProjectStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var number, sourceQuote sql.NullString
	var lat, lng, value sql.NullFloat64
	var status, createdAt, updatedAt string

	err := s.Scan(
		&p.ID, &number, &p.Name, &p.Description, &status, &p.Address, &p.City, &p.State, &lat, &lng,
		&p.ClientName, &value, &sourceQuote, &p.CreatedByID, &p.CreatedByName, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Number = number.String
	p.SourceQuoteID = sourceQuote.String
	p.Status = domain.ProjectStatus(status)
	p.Latitude = floatPtr(lat)
	p.Longitude = floatPtr(lng)
	p.ContractValue = floatPtr(value)

	if p.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}

// nullableString stores "" as NULL so UNIQUE columns allow many blanks.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
