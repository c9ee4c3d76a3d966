package services

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
	"backoffice/internal/query"
	"backoffice/internal/repositories"
	"backoffice/pkg/rabbitmq"
)

const (
	minOrderItems  = 1
	maxOrderItems  = 50
	maxPhoneLength = 20
)

var phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

// commentPolicy strips every markup tag and attribute from free text.
var commentPolicy = bluemonday.StrictPolicy()

// CreateOrderRequest is the submitted basket. Total is the client-claimed
// total; it is checked against the catalog, never trusted.
type CreateOrderRequest struct {
	Address string   `json:"address" validate:"required,max=255"`
	Payment string   `json:"payment" validate:"required,max=50"`
	Phone   string   `json:"phone" validate:"required"`
	Total   float64  `json:"total"`
	Email   string   `json:"email" validate:"required,email"`
	Items   []string `json:"items"`
	Comment string   `json:"comment" validate:"omitempty,max=1000"`
}

// OrderPage is one page of an order listing plus the figures the response
// envelope needs.
type OrderPage struct {
	Orders []models.Order
	Total  int64
	Page   int
	Limit  int
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	mqClient    *rabbitmq.Client
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		mqClient:    mqClient,
	}
}

// ListOrders composes the filter descriptor from the raw parameters and
// runs the listing. A non-empty customerID scopes the result to that
// customer's orders.
func (s *OrderService) ListOrders(ctx context.Context, params query.OrderListParams, customerID string) (*OrderPage, error) {
	filter, err := query.ComposeOrderFilter(params)
	if err != nil {
		return nil, err
	}
	filter.CustomerID = customerID

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// GetOrderByNumber retrieves a single order by its public number. For
// non-staff requesters another customer's order reads as absent, never as
// forbidden.
func (s *OrderService) GetOrderByNumber(ctx context.Context, number int64, requesterID string, staff bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !staff && order.CustomerID != requesterID {
		return nil, apperr.NotFound("order %d not found", number)
	}
	return order, nil
}

// CreateOrder reconstructs the submitted basket against the live catalog,
// validates every invariant and persists the order with the recomputed
// total. Any failure aborts before the write.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) < minOrderItems || len(req.Items) > maxOrderItems {
		return nil, apperr.BadRequest("order must contain between %d and %d items", minOrderItems, maxOrderItems)
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	unique := uniqueStrings(req.Items)
	products, err := s.productRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// One term per submitted entry: duplicates are priced per occurrence.
	var totalBasket float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, id := range req.Items {
		product, ok := byID[id]
		if !ok {
			return nil, apperr.BadRequest("product %s does not exist", id)
		}
		if !product.Sellable() {
			return nil, apperr.BadRequest("product %s is not available for sale", id)
		}
		totalBasket += *product.Price
		items = append(items, models.OrderItem{ProductID: id})
	}
	if totalBasket != req.Total {
		return nil, apperr.BadRequest("order total %v does not match the basket total", req.Total)
	}

	order := &models.Order{
		Status:      models.StatusCreated,
		TotalAmount: totalBasket,
		Items:       items,
		CustomerID:  customerID,
		Address:     strings.TrimSpace(req.Address),
		Phone:       phone,
		Email:       strings.TrimSpace(req.Email),
		Comment:     commentPolicy.Sanitize(strings.TrimSpace(req.Comment)),
		Payment:     req.Payment,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publishOrderEvent("order.created", map[string]any{
		"orderNumber": order.OrderNumber,
		"customerID":  order.CustomerID,
		"status":      order.Status,
		"total":       order.TotalAmount,
	})
	return order, nil
}

// UpdateOrderStatus moves an order to another status within the closed set.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, number int64, rawStatus string) error {
	status, ok := models.ParseOrderStatus(rawStatus)
	if !ok {
		return apperr.BadRequest("invalid order status: %s", rawStatus)
	}
	if err := s.orderRepo.UpdateStatus(ctx, number, status); err != nil {
		return err
	}
	s.publishOrderEvent("order.status_updated", map[string]any{
		"orderNumber": number,
		"status":      status,
	})
	return nil
}

// publishOrderEvent pushes an order event to the bus. Publishing is best
// effort; a broker failure never fails the request that triggered it.
func (s *OrderService) publishOrderEvent(routingKey string, payload map[string]any) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.mqClient.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

func normalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if len(phone) > maxPhoneLength || !phonePattern.MatchString(phone) {
		return "", apperr.BadRequest("invalid phone number")
	}
	return phone, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
