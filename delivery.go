package kindlebeam

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Delivery status values.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// Delivery records one attempt to send an article to the device.
type Delivery struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	ContentHash string    `json:"contentHash"`
	Status      string    `json:"status"`
	Error       string    `json:"error"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// Validate returns an error if the delivery contains invalid fields.
func (d *Delivery) Validate() error {
	if d.URL == "" && d.Title == "" {
		return Errorf(EINVALID, "delivery URL or title required")
	}
	if d.Status != DeliverySent && d.Status != DeliveryFailed {
		return Errorf(EINVALID, "invalid delivery status %q", d.Status)
	}
	return nil
}

// HashContent computes the xxHash of article content and returns a hex
// string. The hash identifies re-sends of the same content at a
// different URL.
func HashContent(content string) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(content))
	return hex.EncodeToString(b[:])
}

// DeliveryFilter represents a filter for FindDeliveries.
type DeliveryFilter struct {
	ID     *string `json:"id"`
	URL    *string `json:"url"`
	Status *string `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// HistoryService records and queries past delivery attempts.
type HistoryService interface {
	// CreateDelivery records a delivery attempt.
	CreateDelivery(ctx context.Context, d *Delivery) error

	// FindDeliveryByID retrieves a delivery by ID.
	// Returns ENOTFOUND if the delivery does not exist.
	FindDeliveryByID(ctx context.Context, id string) (*Delivery, error)

	// FindDeliveries retrieves deliveries matching the filter,
	// most recent first.
	FindDeliveries(ctx context.Context, filter DeliveryFilter) ([]*Delivery, error)

	// DeleteDelivery permanently removes a delivery record.
	// Returns ENOTFOUND if the delivery does not exist.
	DeleteDelivery(ctx context.Context, id string) error
}
