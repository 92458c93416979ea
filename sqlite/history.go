package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Compile-time interface verification.
var _ kindlebeam.HistoryService = (*HistoryService)(nil)

// HistoryService implements kindlebeam.HistoryService using SQLite.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

// CreateDelivery records a delivery attempt. The ID and timestamp are
// assigned here.
func (s *HistoryService) CreateDelivery(ctx context.Context, d *kindlebeam.Delivery) error {
	if err := d.Validate(); err != nil {
		return err
	}

	d.ID = uuid.New().String()
	d.DeliveredAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, url, title, content_hash, status, error, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.URL, d.Title, d.ContentHash, d.Status, d.Error,
		d.DeliveredAt.Format(time.RFC3339))

	return err
}

// FindDeliveryByID retrieves a delivery by ID.
func (s *HistoryService) FindDeliveryByID(ctx context.Context, id string) (*kindlebeam.Delivery, error) {
	var d kindlebeam.Delivery
	var deliveredAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, content_hash, status, error, delivered_at
		FROM deliveries
		WHERE id = ?
	`, id).Scan(&d.ID, &d.URL, &d.Title, &d.ContentHash, &d.Status, &d.Error, &deliveredAt)

	if err == sql.ErrNoRows {
		return nil, kindlebeam.Errorf(kindlebeam.ENOTFOUND, "delivery not found")
	}
	if err != nil {
		return nil, err
	}

	var parseErr error
	d.DeliveredAt, parseErr = time.Parse(time.RFC3339, deliveredAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse delivered_at: %w", parseErr)
	}

	return &d, nil
}

// FindDeliveries retrieves deliveries matching the filter, most recent
// first.
func (s *HistoryService) FindDeliveries(ctx context.Context, filter kindlebeam.DeliveryFilter) ([]*kindlebeam.Delivery, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, title, content_hash, status, error, delivered_at FROM deliveries WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, *filter.Status)
	}

	query.WriteString(" ORDER BY delivered_at DESC, id")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []*kindlebeam.Delivery
	for rows.Next() {
		var d kindlebeam.Delivery
		var deliveredAt string

		if err := rows.Scan(&d.ID, &d.URL, &d.Title, &d.ContentHash, &d.Status, &d.Error, &deliveredAt); err != nil {
			return nil, err
		}

		var parseErr error
		d.DeliveredAt, parseErr = time.Parse(time.RFC3339, deliveredAt)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse delivered_at: %w", parseErr)
		}

		deliveries = append(deliveries, &d)
	}

	return deliveries, rows.Err()
}

// DeleteDelivery permanently removes a delivery record.
func (s *HistoryService) DeleteDelivery(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM deliveries WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return kindlebeam.Errorf(kindlebeam.ENOTFOUND, "delivery not found")
	}

	return nil
}
