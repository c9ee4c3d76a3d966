package repositories

import (
	"context"

	"backoffice/internal/models"
	"backoffice/internal/query"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists the order together with its items and keeps the
	// owning customer's aggregate figures in step. No partial order is
	// ever written.
	Create(ctx context.Context, order *models.Order) error
	GetByNumber(ctx context.Context, number int64) (*models.Order, error)
	// List returns one page of orders plus the total count of distinct
	// orders matching the same filter.
	List(ctx context.Context, filter *query.OrderFilter) ([]models.Order, int64, error)
	// SearchIDsByAddress returns ids of orders whose delivery address
	// contains term, capped at limit.
	SearchIDsByAddress(ctx context.Context, term string, limit int) ([]string, error)
	UpdateStatus(ctx context.Context, number int64, status models.OrderStatus) error
}
