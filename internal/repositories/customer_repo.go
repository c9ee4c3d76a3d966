package repositories

import (
	"context"

	"backoffice/internal/models"
	"backoffice/internal/query"
)

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	List(ctx context.Context, filter *query.CustomerFilter) ([]models.Customer, int64, error)
}
