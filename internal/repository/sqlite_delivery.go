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

// SQLiteDeliveryRepo implements DeliveryRepo using a SQLite database.
type SQLiteDeliveryRepo struct {
	db db.DBTX
}

// NewSQLiteDeliveryRepo creates a new SQLiteDeliveryRepo.
func NewSQLiteDeliveryRepo(conn db.DBTX) *SQLiteDeliveryRepo {
	return &SQLiteDeliveryRepo{db: conn}
}

const deliveryColumns = `id, project_id, created_by_id, supplier_name, supplier_contact, supplier_phone,
	po_number, contents, carrier, tracking_number, order_date, release_date, estimated_arrival,
	actual_arrival, is_released, is_delivered, notify_24h, notification_sent, created_at, updated_at`

func (r *SQLiteDeliveryRepo) Create(ctx context.Context, d *domain.Delivery) error {
	contents, err := encodeStrings(d.Contents)
	if err != nil {
		return fmt.Errorf("encoding contents: %w", err)
	}
	query := `INSERT INTO deliveries (` + deliveryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		d.ID, d.ProjectID, d.CreatedByID, d.SupplierName, d.SupplierContact, d.SupplierPhone,
		d.PONumber, contents, d.Carrier, d.TrackingNumber,
		nullableTimeToString(d.OrderDate, timestampLayout),
		nullableTimeToString(d.ReleaseDate, timestampLayout),
		nullableTimeToString(d.EstimatedArrival, timestampLayout),
		nullableTimeToString(d.ActualArrival, timestampLayout),
		boolToInt(d.IsReleased), boolToInt(d.IsDelivered),
		boolToInt(d.Notify24h), boolToInt(d.NotificationSent),
		formatTimestamp(d.CreatedAt), formatTimestamp(d.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting delivery: %w", err)
	}
	return nil
}

func (r *SQLiteDeliveryRepo) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = ?`
	d, err := scanDelivery(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delivery %s: %w", id, domain.ErrNotFound)
	}
	return d, err
}

func (r *SQLiteDeliveryRepo) List(ctx context.Context, projectID string) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY estimated_arrival IS NULL, estimated_arrival, created_at`
	return r.list(ctx, query, args...)
}

func (r *SQLiteDeliveryRepo) ListReminderCandidates(ctx context.Context) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
		WHERE notify_24h = 1 AND notification_sent = 0 AND is_delivered = 0 AND estimated_arrival IS NOT NULL
		ORDER BY estimated_arrival`
	return r.list(ctx, query)
}

// Update writes every editable field. notification_sent is left alone; only
// MarkNotificationSent may change it.
func (r *SQLiteDeliveryRepo) Update(ctx context.Context, d *domain.Delivery) error {
	contents, err := encodeStrings(d.Contents)
	if err != nil {
		return fmt.Errorf("encoding contents: %w", err)
	}
	query := `UPDATE deliveries SET supplier_name = ?, supplier_contact = ?, supplier_phone = ?, po_number = ?,
		contents = ?, carrier = ?, tracking_number = ?, order_date = ?, release_date = ?, estimated_arrival = ?,
		actual_arrival = ?, is_released = ?, is_delivered = ?, notify_24h = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		d.SupplierName, d.SupplierContact, d.SupplierPhone, d.PONumber,
		contents, d.Carrier, d.TrackingNumber,
		nullableTimeToString(d.OrderDate, timestampLayout),
		nullableTimeToString(d.ReleaseDate, timestampLayout),
		nullableTimeToString(d.EstimatedArrival, timestampLayout),
		nullableTimeToString(d.ActualArrival, timestampLayout),
		boolToInt(d.IsReleased), boolToInt(d.IsDelivered), boolToInt(d.Notify24h),
		formatTimestamp(d.UpdatedAt),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating delivery: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delivery %s: %w", d.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteDeliveryRepo) MarkNotificationSent(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE deliveries SET notification_sent = 1, updated_at = ? WHERE id = ? AND notification_sent = 0`,
		formatTimestamp(at), id)
	if err != nil {
		return false, fmt.Errorf("latching delivery reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking reminder latch: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteDeliveryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deliveries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting delivery: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delivery %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteDeliveryRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Delivery, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deliveries: %w", err)
	}
	return deliveries, nil
}

func scanDelivery(s scanner) (*domain.Delivery, error) {
	var d domain.Delivery
	var contents, createdAt, updatedAt string
	var orderDate, releaseDate, eta, actual sql.NullString
	var released, delivered, notify, sent int

	err := s.Scan(
		&d.ID, &d.ProjectID, &d.CreatedByID, &d.SupplierName, &d.SupplierContact, &d.SupplierPhone,
		&d.PONumber, &contents, &d.Carrier, &d.TrackingNumber, &orderDate, &releaseDate, &eta,
		&actual, &released, &delivered, &notify, &sent, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning delivery: %w", err)
	}

	d.OrderDate = parseNullableTime(orderDate, time.RFC3339)
	d.ReleaseDate = parseNullableTime(releaseDate, time.RFC3339)
	d.EstimatedArrival = parseNullableTime(eta, time.RFC3339)
	d.ActualArrival = parseNullableTime(actual, time.RFC3339)
	d.IsReleased = intToBool(released)
	d.IsDelivered = intToBool(delivered)
	d.Notify24h = intToBool(notify)
	d.NotificationSent = intToBool(sent)

	if d.Contents, err = decodeStrings(contents, "contents"); err != nil {
		return nil, err
	}
	if d.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &d, nil
}
