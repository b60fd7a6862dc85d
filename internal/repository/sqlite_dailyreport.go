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

// SQLiteDailyReportRepo implements DailyReportRepo using a SQLite database.
type SQLiteDailyReportRepo struct {
	db db.DBTX
}

// NewSQLiteDailyReportRepo creates a new SQLiteDailyReportRepo.
func NewSQLiteDailyReportRepo(conn db.DBTX) *SQLiteDailyReportRepo {
	return &SQLiteDailyReportRepo{db: conn}
}

const dailyReportColumns = `id, project_id, submitted_by_id, submitted_by_name, report_date, crew_count,
	work_completed, delays_constraints, notes, created_at, updated_at`

func (r *SQLiteDailyReportRepo) Create(ctx context.Context, dr *domain.DailyReport) error {
	query := `INSERT INTO daily_reports (` + dailyReportColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		dr.ID, dr.ProjectID, dr.SubmittedByID, dr.SubmittedByName, dr.ReportDate.Format(dateLayout),
		dr.CrewCount, dr.WorkCompleted, dr.DelaysConstraints, dr.Notes,
		formatTimestamp(dr.CreatedAt), formatTimestamp(dr.UpdatedAt),
	)
	if err != nil {
		return wrapInsertErr(err, "daily report")
	}
	return nil
}

func (r *SQLiteDailyReportRepo) GetByID(ctx context.Context, id string) (*domain.DailyReport, error) {
	query := `SELECT ` + dailyReportColumns + ` FROM daily_reports WHERE id = ?`
	dr, err := scanDailyReport(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("daily report %s: %w", id, domain.ErrNotFound)
	}
	return dr, err
}

func (r *SQLiteDailyReportRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.DailyReport, error) {
	query := `SELECT ` + dailyReportColumns + ` FROM daily_reports WHERE project_id = ?
		ORDER BY report_date DESC, created_at DESC`
	return r.list(ctx, query, projectID)
}

func (r *SQLiteDailyReportRepo) ListSince(ctx context.Context, since time.Time) ([]*domain.DailyReport, error) {
	query := `SELECT ` + dailyReportColumns + ` FROM daily_reports WHERE report_date >= ?
		ORDER BY report_date DESC, created_at DESC`
	return r.list(ctx, query, since.UTC().Format(dateLayout))
}

func (r *SQLiteDailyReportRepo) list(ctx context.Context, query string, args ...any) ([]*domain.DailyReport, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing daily reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.DailyReport
	for rows.Next() {
		dr, err := scanDailyReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily reports: %w", err)
	}
	return reports, nil
}

func scanDailyReport(s scanner) (*domain.DailyReport, error) {
	var dr domain.DailyReport
	var reportDate, createdAt, updatedAt string

	err := s.Scan(&dr.ID, &dr.ProjectID, &dr.SubmittedByID, &dr.SubmittedByName, &reportDate, &dr.CrewCount,
		&dr.WorkCompleted, &dr.DelaysConstraints, &dr.Notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning daily report: %w", err)
	}

	if dr.ReportDate, err = time.Parse(dateLayout, reportDate); err != nil {
		return nil, fmt.Errorf("parsing report_date: %w", err)
	}
	if dr.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if dr.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &dr, nil
}
