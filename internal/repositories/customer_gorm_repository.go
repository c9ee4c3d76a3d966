package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
	"backoffice/internal/query"
)

var customerColumns = map[string]string{
	query.FieldCreatedAt:     "customers.created_at",
	query.FieldLastOrderDate: "customers.last_order_date",
	query.FieldTotalAmount:   "customers.total_amount",
	query.FieldOrderCount:    "customers.order_count",
}

var customerSortColumns = map[query.SortField]string{
	query.SortCreatedAt:     "customers.created_at",
	query.SortTotalAmount:   "customers.total_amount",
	query.SortOrderCount:    "customers.order_count",
	query.SortLastOrderDate: "customers.last_order_date",
	query.SortName:          "customers.name",
}

// GORMCustomerRepository is a GORM implementation of CustomerRepository.
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewGORMCustomerRepository creates a new instance of GORMCustomerRepository.
func NewGORMCustomerRepository(db *gorm.DB) *GORMCustomerRepository {
	return &GORMCustomerRepository{db: db}
}

// Create creates a new customer in the database.
func (r *GORMCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// GetByID retrieves a single customer by id.
func (r *GORMCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("customer with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get customer by ID %s: %w", id, err)
	}
	return &customer, nil
}

// GetByEmail retrieves a single customer by email.
func (r *GORMCustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("customer with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to get customer by email %s: %w", email, err)
	}
	return &customer, nil
}

// List returns one filtered, sorted page of customers plus the total count
// matching the same filter.
func (r *GORMCustomerRepository) List(ctx context.Context, filter *query.CustomerFilter) ([]models.Customer, int64, error) {
	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Customer{})
		tx = applyConditions(tx, filter.Conditions, customerColumns)
		if s := filter.Search; s != nil {
			pattern := query.LikePattern(s.Term)
			if len(s.LastOrderIDs) > 0 {
				tx = tx.Where("LOWER(customers.name) LIKE ? ESCAPE '\\' OR customers.last_order_id IN ?", pattern, s.LastOrderIDs)
			} else {
				tx = tx.Where("LOWER(customers.name) LIKE ? ESCAPE '\\'", pattern)
			}
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	var customers []models.Customer
	err := base().
		Order(customerSortColumns[filter.SortField] + " " + string(filter.SortDirection)).
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Preload("LastOrder").
		Find(&customers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}
