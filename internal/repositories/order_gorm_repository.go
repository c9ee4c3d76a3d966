package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
	"backoffice/internal/query"
)

var orderColumns = map[string]string{
	query.FieldCreatedAt:   "orders.created_at",
	query.FieldTotalAmount: "orders.total_amount",
	query.FieldStatus:      "orders.status",
}

var orderSortColumns = map[query.SortField]string{
	query.SortCreatedAt:   "orders.created_at",
	query.SortTotalAmount: "orders.total_amount",
	query.SortOrderNumber: "orders.order_number",
	query.SortStatus:      "orders.status",
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create persists the order, its items and the customer aggregate update in
// one transaction. The public order number is the next value in sequence.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.ID == "" {
			order.ID = uuid.New().String()
		}
		next, err := nextOrderNumber(tx)
		if err != nil {
			return err
		}
		order.OrderNumber = next
		for i := range order.Items {
			order.Items[i].Position = i
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		res := tx.Model(&models.Customer{}).
			Where("id = ?", order.CustomerID).
			Updates(map[string]any{
				"total_amount":    gorm.Expr("total_amount + ?", order.TotalAmount),
				"order_count":     gorm.Expr("order_count + 1"),
				"last_order_id":   order.ID,
				"last_order_date": order.CreatedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update customer aggregates: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.BadRequest("customer %s does not exist", order.CustomerID)
		}
		return nil
	})
}

// nextOrderNumber draws the next public order number. A bare
// MAX(order_number)+1 scan would let two concurrent transactions read the
// same maximum under read committed and collide on the unique index, so the
// number comes from a counter row instead: the UPDATE takes a row lock and
// concurrent allocations serialize behind it. The counter is seeded from
// the highest existing number the first time an order is created.
func nextOrderNumber(tx *gorm.DB) (int64, error) {
	var current int64
	if err := tx.Model(&models.Order{}).
		Select("COALESCE(MAX(order_number), 0)").
		Scan(&current).Error; err != nil {
		return 0, fmt.Errorf("failed to read order numbers: %w", err)
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.OrderCounter{ID: 1, Value: current}).Error; err != nil {
		return 0, fmt.Errorf("failed to seed order counter: %w", err)
	}
	if err := tx.Model(&models.OrderCounter{}).
		Where("id = ?", 1).
		Update("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, fmt.Errorf("failed to advance order counter: %w", err)
	}
	var next int64
	if err := tx.Model(&models.OrderCounter{}).
		Where("id = ?", 1).
		Pluck("value", &next).Error; err != nil {
		return 0, fmt.Errorf("failed to read order counter: %w", err)
	}
	return next, nil
}

// GetByNumber retrieves a single order by its public order number with its
// items, products and customer resolved.
func (r *GORMOrderRepository) GetByNumber(ctx context.Context, number int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByPosition).
		Preload("Items.Product").
		Preload("Customer").
		First(&order, "order_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order %d not found", number)
		}
		return nil, fmt.Errorf("failed to get order %d: %w", number, err)
	}
	return &order, nil
}

// List runs the order listing as two branches of one shared filtered
// prefix. The prefix flattens each order into one row per purchased item,
// with its product and customer joined in, so search can inspect product
// titles; orders with no items or a dangling customer reference drop out
// here (inner-join semantics, by policy). The count branch collapses back
// to distinct orders; the data branch sorts and windows the distinct
// orders, then re-materializes each one's full item list. Both branches
// run concurrently, a count slightly stale relative to the page is
// accepted.
func (r *GORMOrderRepository) List(ctx context.Context, filter *query.OrderFilter) ([]models.Order, int64, error) {
	flattened := func(ctx context.Context) *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Order{}).
			Joins("JOIN order_items ON order_items.order_id = orders.id").
			Joins("JOIN products ON products.id = order_items.product_id").
			Joins("JOIN customers ON customers.id = orders.customer_id")
		tx = applyConditions(tx, filter.Conditions, orderColumns)
		if filter.CustomerID != "" {
			tx = tx.Where("orders.customer_id = ?", filter.CustomerID)
		}
		if s := filter.Search; s != nil {
			pattern := query.LikePattern(s.Term)
			if s.OrderNumber != nil {
				tx = tx.Where("LOWER(products.title) LIKE ? ESCAPE '\\' OR orders.order_number = ?", pattern, *s.OrderNumber)
			} else {
				tx = tx.Where("LOWER(products.title) LIKE ? ESCAPE '\\'", pattern)
			}
		}
		return tx
	}

	var (
		orders []models.Order
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := flattened(gctx).Distinct("orders.id").Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := flattened(gctx).
			Select("orders.*").
			Group("orders.id").
			Order(orderSortColumns[filter.SortField] + " " + string(filter.SortDirection)).
			Offset(filter.Offset()).
			Limit(filter.Limit).
			Preload("Items", orderItemsByPosition).
			Preload("Items.Product").
			Preload("Customer").
			Find(&orders).Error
		if err != nil {
			return fmt.Errorf("failed to list orders: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SearchIDsByAddress resolves orders whose delivery address contains term,
// capped at limit. The resulting id set folds into the customer listing as
// an equality-set predicate.
func (r *GORMOrderRepository) SearchIDsByAddress(ctx context.Context, term string, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("LOWER(orders.address) LIKE ? ESCAPE '\\'", query.LikePattern(term)).
		Limit(limit).
		Pluck("orders.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search orders by address: %w", err)
	}
	return ids, nil
}

// UpdateStatus updates the status of the order with the given public
// number.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, number int64, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_number = ?", number).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %d: %w", number, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order %d not found", number)
	}
	return nil
}

func orderItemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.position")
}
