package handlers

import (
	"fmt"
	"log"
	"strconv"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
	"backoffice/internal/query"
	"backoffice/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes available to any authenticated
// customer.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/my", h.HandleListMyOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:number", h.HandleGetOrderByNumber)
}

// RegisterStaffRoutes registers the back-office order routes.
func (h *OrderHandler) RegisterStaffRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Patch("/:number/status", h.HandleUpdateOrderStatus)
}

func orderListParams(c *fiber.Ctx) query.OrderListParams {
	return query.OrderListParams{
		Page:            c.Query("page"),
		Limit:           c.Query("limit"),
		SortField:       c.Query("sortField"),
		SortDirection:   c.Query("sortDirection"),
		Search:          c.Query("search"),
		Status:          c.Query("status"),
		TotalAmountFrom: c.Query("totalAmountFrom"),
		TotalAmountTo:   c.Query("totalAmountTo"),
		CreatedAtFrom:   c.Query("createdAtFrom"),
		CreatedAtTo:     c.Query("createdAtTo"),
	}
}

// HandleListOrders returns one filtered page of all orders.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	page, err := h.service.ListOrders(c.UserContext(), orderListParams(c), "")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orderListBody(page))
}

// HandleListMyOrders returns one filtered page of the requesting customer's
// own orders.
func (h *OrderHandler) HandleListMyOrders(c *fiber.Ctx) error {
	page, err := h.service.ListOrders(c.UserContext(), orderListParams(c), requesterID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orderListBody(page))
}

func orderListBody(page *services.OrderPage) fiber.Map {
	orders := page.Orders
	if orders == nil {
		orders = []models.Order{}
	}
	return fiber.Map{
		"orders":     orders,
		"pagination": paginationMap("totalOrders", page.Total, page.Page, page.Limit),
	}
}

// HandleGetOrderByNumber retrieves a single order by its public number.
func (h *OrderHandler) HandleGetOrderByNumber(c *fiber.Ctx) error {
	number, err := strconv.ParseInt(c.Params("number"), 10, 64)
	if err != nil {
		return respondError(c, apperr.BadRequest("invalid order number"))
	}

	order, err := h.service.GetOrderByNumber(c.UserContext(), number, requesterID(c), isStaff(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order for the authenticated customer.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create order request body: %v", err)
		return respondError(c, apperr.BadRequest("invalid request body"))
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		e := validationErrors[0]
		return respondError(c, apperr.BadRequest("field '%s' failed on the '%s' rule", e.Field(), e.Tag()))
	}

	order, err := h.service.CreateOrder(c.UserContext(), requesterID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	number, err := strconv.ParseInt(c.Params("number"), 10, 64)
	if err != nil {
		return respondError(c, apperr.BadRequest("invalid order number"))
	}

	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return respondError(c, apperr.BadRequest("invalid request body for status update"))
	}
	if updateData.Status == "" {
		return respondError(c, apperr.BadRequest("status is required for order status update"))
	}

	if err := h.service.UpdateOrderStatus(c.UserContext(), number, updateData.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %d status updated successfully to %s", number, updateData.Status),
	})
}
