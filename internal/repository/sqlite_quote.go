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

// SQLiteQuoteRepo implements QuoteRepo using a SQLite database.
type SQLiteQuoteRepo struct {
	db db.DBTX
}

// NewSQLiteQuoteRepo creates a new SQLiteQuoteRepo.
func NewSQLiteQuoteRepo(conn db.DBTX) *SQLiteQuoteRepo {
	return &SQLiteQuoteRepo{db: conn}
}

const quoteColumns = `id, title, description, address, city, state, latitude, longitude,
	customer_name, customer_phone, customer_email, photos, scope_notes, urgency, preferred_schedule,
	status, submitted_by_id, submitted_by_name, assigned_to_id, quoted_amount, quote_notes, quoted_at,
	converted_project_id, created_at, updated_at`

func (r *SQLiteQuoteRepo) Create(ctx context.Context, q *domain.QuoteRequest) error {
	photos, err := encodeStrings(q.Photos)
	if err != nil {
		return fmt.Errorf("encoding photos: %w", err)
	}
	query := `INSERT INTO quote_requests (` + quoteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		q.ID, q.Title, q.Description, q.Address, q.City, q.State,
		nullableFloat(q.Latitude), nullableFloat(q.Longitude),
		q.CustomerName, q.CustomerPhone, q.CustomerEmail, photos, q.ScopeNotes,
		string(q.Urgency), q.PreferredSchedule, string(q.Status),
		q.SubmittedByID, q.SubmittedByName, q.AssignedToID,
		nullableFloat(q.QuotedAmount), q.QuoteNotes,
		nullableTimeToString(q.QuotedAt, timestampLayout),
		q.ConvertedProjectID,
		formatTimestamp(q.CreatedAt), formatTimestamp(q.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting quote request: %w", err)
	}
	return nil
}

func (r *SQLiteQuoteRepo) GetByID(ctx context.Context, id string) (*domain.QuoteRequest, error) {
	query := `SELECT ` + quoteColumns + ` FROM quote_requests WHERE id = ?`
	q, err := scanQuote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote request %s: %w", id, domain.ErrNotFound)
	}
	return q, err
}

func (r *SQLiteQuoteRepo) List(ctx context.Context, f QuoteFilter) ([]*domain.QuoteRequest, error) {
	query := `SELECT ` + quoteColumns + ` FROM quote_requests WHERE 1=1`
	var args []any
	if len(f.Statuses) > 0 {
		query += ` AND status IN (` + inClause(len(f.Statuses)) + `)`
		args = append(args, stringArgs(f.Statuses)...)
	}
	if len(f.Urgencies) > 0 {
		query += ` AND urgency IN (` + inClause(len(f.Urgencies)) + `)`
		args = append(args, stringArgs(f.Urgencies)...)
	}
	if f.SubmittedByID != "" {
		query += ` AND submitted_by_id = ?`
		args = append(args, f.SubmittedByID)
	}
	if f.AssignedToID != "" {
		query += ` AND assigned_to_id = ?`
		args = append(args, f.AssignedToID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing quote requests: %w", err)
	}
	defer rows.Close()

	var quotes []*domain.QuoteRequest
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quote requests: %w", err)
	}
	return quotes, nil
}

func (r *SQLiteQuoteRepo) UpdateIfStatus(ctx context.Context, q *domain.QuoteRequest, expected domain.QuoteStatus) (bool, error) {
	query := `UPDATE quote_requests SET status = ?, assigned_to_id = ?, quoted_amount = ?, quote_notes = ?,
		quoted_at = ?, converted_project_id = ?, updated_at = ?
		WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(q.Status), q.AssignedToID, nullableFloat(q.QuotedAmount), q.QuoteNotes,
		nullableTimeToString(q.QuotedAt, timestampLayout), q.ConvertedProjectID,
		formatTimestamp(q.UpdatedAt),
		q.ID, string(expected),
	)
	if err != nil {
		return false, fmt.Errorf("updating quote request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking quote update: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteQuoteRepo) CountByStatus(ctx context.Context) (map[domain.QuoteStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM quote_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting quote requests: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.QuoteStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning quote count: %w", err)
		}
		counts[domain.QuoteStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanQuote(s scanner) (*domain.QuoteRequest, error) {
	var q domain.QuoteRequest
	var lat, lng, amount sql.NullFloat64
	var photos, urgency, status, createdAt, updatedAt string
	var quotedAt sql.NullString

	err := s.Scan(
		&q.ID, &q.Title, &q.Description, &q.Address, &q.City, &q.State, &lat, &lng,
		&q.CustomerName, &q.CustomerPhone, &q.CustomerEmail, &photos, &q.ScopeNotes, &urgency, &q.PreferredSchedule,
		&status, &q.SubmittedByID, &q.SubmittedByName, &q.AssignedToID, &amount, &q.QuoteNotes, &quotedAt,
		&q.ConvertedProjectID, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning quote request: %w", err)
	}

	q.Latitude = floatPtr(lat)
	q.Longitude = floatPtr(lng)
	q.QuotedAmount = floatPtr(amount)
	q.Urgency = domain.Urgency(urgency)
	q.Status = domain.QuoteStatus(status)
	q.QuotedAt = parseNullableTime(quotedAt, time.RFC3339)

	if q.Photos, err = decodeStrings(photos, "photos"); err != nil {
		return nil, err
	}
	if q.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if q.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &q, nil
}
