package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// ProjectNumberScope is the project_sequences row that numbers converted projects.
const ProjectNumberScope = "project_number"

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillProjectSequence(db); err != nil {
		return fmt.Errorf("backfilling project number sequence: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS quote_requests (
		id                   TEXT PRIMARY KEY,
		title                TEXT NOT NULL,
		description          TEXT NOT NULL,
		address              TEXT NOT NULL DEFAULT '',
		city                 TEXT NOT NULL DEFAULT '',
		state                TEXT NOT NULL DEFAULT '',
		latitude             REAL,
		longitude            REAL,
		customer_name        TEXT NOT NULL DEFAULT '',
		customer_phone       TEXT NOT NULL DEFAULT '',
		customer_email       TEXT NOT NULL DEFAULT '',
		photos               TEXT NOT NULL DEFAULT '[]',
		scope_notes          TEXT NOT NULL DEFAULT '',
		urgency              TEXT NOT NULL DEFAULT 'standard'
		                     CHECK(urgency IN ('standard','rush','emergency')),
		preferred_schedule   TEXT NOT NULL DEFAULT '',
		status               TEXT NOT NULL DEFAULT 'pending'
		                     CHECK(status IN ('pending','in_review','quoted','declined','converted')),
		submitted_by_id      TEXT NOT NULL DEFAULT '',
		submitted_by_name    TEXT NOT NULL DEFAULT '',
		assigned_to_id       TEXT NOT NULL DEFAULT '',
		quoted_amount        REAL,
		quote_notes          TEXT NOT NULL DEFAULT '',
		quoted_at            TEXT,
		converted_project_id TEXT NOT NULL DEFAULT '',
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL,
		CHECK((status IN ('quoted','converted')) = (quoted_amount IS NOT NULL)),
		CHECK(quoted_amount IS NULL OR quoted_amount > 0)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_quotes_status_created ON quote_requests(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_submitted_by ON quote_requests(submitted_by_id)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id              TEXT PRIMARY KEY,
		number          TEXT UNIQUE,
		name            TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL DEFAULT 'draft'
		                CHECK(status IN ('draft','planning','active','on_hold','completed','closed')),
		address         TEXT NOT NULL DEFAULT '',
		city            TEXT NOT NULL DEFAULT '',
		state           TEXT NOT NULL DEFAULT '',
		latitude        REAL,
		longitude       REAL,
		client_name     TEXT NOT NULL DEFAULT '',
		contract_value  REAL,
		source_quote_id TEXT UNIQUE REFERENCES quote_requests(id),
		created_by_id   TEXT NOT NULL DEFAULT '',
		created_by_name TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_status_created ON projects(status, created_at)`,

	`CREATE TABLE IF NOT EXISTS project_sequences (
		scope    TEXT PRIMARY KEY,
		next_seq INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id              TEXT PRIMARY KEY,
		project_id      TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		assignee_id     TEXT NOT NULL,
		created_by_id   TEXT NOT NULL DEFAULT '',
		priority        TEXT NOT NULL DEFAULT 'medium'
		                CHECK(priority IN ('urgent','high','medium','low')),
		status          TEXT NOT NULL DEFAULT 'pending'
		                CHECK(status IN ('pending','acknowledged','in_progress','completed','blocked')),
		blocked_from    TEXT NOT NULL DEFAULT '',
		due_date        TEXT,
		acknowledged_at TEXT,
		completed_at    TEXT,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_project_status ON tasks(project_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`,

	`CREATE TABLE IF NOT EXISTS rfis (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		number     TEXT NOT NULL DEFAULT '',
		question   TEXT NOT NULL,
		location   TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'draft'
		           CHECK(status IN ('draft','submitted','routed','answered','closed')),
		due_date   TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_rfis_project_status ON rfis(project_id, status)`,

	`CREATE TABLE IF NOT EXISTS project_constraints (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		type        TEXT NOT NULL DEFAULT '',
		area        TEXT NOT NULL DEFAULT '',
		owner_name  TEXT NOT NULL DEFAULT '',
		due_date    TEXT,
		is_resolved INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_constraints_project ON project_constraints(project_id, is_resolved)`,

	`CREATE TABLE IF NOT EXISTS daily_reports (
		id                 TEXT PRIMARY KEY,
		project_id         TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		submitted_by_id    TEXT NOT NULL,
		submitted_by_name  TEXT NOT NULL DEFAULT '',
		report_date        TEXT NOT NULL,
		crew_count         INTEGER NOT NULL DEFAULT 0,
		work_completed     TEXT NOT NULL DEFAULT '',
		delays_constraints TEXT NOT NULL DEFAULT '',
		notes              TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL,
		UNIQUE(project_id, report_date, submitted_by_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_daily_reports_date ON daily_reports(report_date)`,

	`CREATE TABLE IF NOT EXISTS deliveries (
		id                TEXT PRIMARY KEY,
		project_id        TEXT NOT NULL,
		created_by_id     TEXT NOT NULL DEFAULT '',
		supplier_name     TEXT NOT NULL,
		supplier_contact  TEXT NOT NULL DEFAULT '',
		supplier_phone    TEXT NOT NULL DEFAULT '',
		po_number         TEXT NOT NULL DEFAULT '',
		contents          TEXT NOT NULL DEFAULT '[]',
		carrier           TEXT NOT NULL DEFAULT '',
		tracking_number   TEXT NOT NULL DEFAULT '',
		order_date        TEXT,
		release_date      TEXT,
		estimated_arrival TEXT,
		actual_arrival    TEXT,
		is_released       INTEGER NOT NULL DEFAULT 0,
		is_delivered      INTEGER NOT NULL DEFAULT 0,
		notify_24h        INTEGER NOT NULL DEFAULT 0,
		notification_sent INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_deliveries_project ON deliveries(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_reminder ON deliveries(notify_24h, notification_sent, is_delivered)`,

	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key         TEXT PRIMARY KEY,
		operation   TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
}

// migrateBackfillProjectSequence seeds the project number allocator from the
// highest number already issued, so databases that predate the allocator
// never hand out a duplicate.
func migrateBackfillProjectSequence(db *sql.DB) error {
	ctx := context.Background()

	var exists int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM project_sequences WHERE scope = ?`, ProjectNumberScope).Scan(&exists); err != nil {
		return fmt.Errorf("checking project sequence: %w", err)
	}
	if exists > 0 {
		return nil
	}

	rows, err := db.QueryContext(ctx, `SELECT number FROM projects WHERE number LIKE 'Q%-%'`)
	if err != nil {
		return fmt.Errorf("loading project numbers: %w", err)
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return fmt.Errorf("scanning project number: %w", err)
		}
		if seq, ok := parseProjectSeq(number); ok && seq > highest {
			highest = seq
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating project numbers: %w", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO project_sequences (scope, next_seq) VALUES (?, ?)`,
		ProjectNumberScope, highest+1); err != nil {
		return fmt.Errorf("seeding project sequence: %w", err)
	}
	return nil
}

// parseProjectSeq extracts 12 from "Q12-20260118".
func parseProjectSeq(number string) (int, bool) {
	rest, ok := strings.CutPrefix(number, "Q")
	if !ok {
		return 0, false
	}
	digits, _, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, false
	}
	seq, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return seq, true
}
