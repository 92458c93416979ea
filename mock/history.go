package mock

import (
	"context"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

var _ kindlebeam.HistoryService = (*HistoryService)(nil)

// HistoryService is a mock implementation of kindlebeam.HistoryService.
type HistoryService struct {
	CreateDeliveryFn   func(ctx context.Context, d *kindlebeam.Delivery) error
	FindDeliveryByIDFn func(ctx context.Context, id string) (*kindlebeam.Delivery, error)
	FindDeliveriesFn   func(ctx context.Context, filter kindlebeam.DeliveryFilter) ([]*kindlebeam.Delivery, error)
	DeleteDeliveryFn   func(ctx context.Context, id string) error
}

func (s *HistoryService) CreateDelivery(ctx context.Context, d *kindlebeam.Delivery) error {
	return s.CreateDeliveryFn(ctx, d)
}

func (s *HistoryService) FindDeliveryByID(ctx context.Context, id string) (*kindlebeam.Delivery, error) {
	return s.FindDeliveryByIDFn(ctx, id)
}

func (s *HistoryService) FindDeliveries(ctx context.Context, filter kindlebeam.DeliveryFilter) ([]*kindlebeam.Delivery, error) {
	return s.FindDeliveriesFn(ctx, filter)
}

func (s *HistoryService) DeleteDelivery(ctx context.Context, id string) error {
	return s.DeleteDeliveryFn(ctx, id)
}
