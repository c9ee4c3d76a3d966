package handlers

import (
	"backoffice/internal/models"
	"backoffice/internal/query"
	"backoffice/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles HTTP requests for the customer back office.
type CustomerHandler struct {
	service *services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// RegisterRoutes registers the customer routes with the Fiber app.
func (h *CustomerHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/customers", h.HandleListCustomers)
}

// HandleListCustomers returns one filtered, sorted page of customers.
func (h *CustomerHandler) HandleListCustomers(c *fiber.Ctx) error {
	params := query.CustomerListParams{
		Page:                 c.Query("page"),
		Limit:                c.Query("limit"),
		SortField:            c.Query("sortField"),
		SortDirection:        c.Query("sortDirection"),
		Search:               c.Query("search"),
		RegistrationDateFrom: c.Query("registrationDateFrom"),
		RegistrationDateTo:   c.Query("registrationDateTo"),
		LastOrderDateFrom:    c.Query("lastOrderDateFrom"),
		LastOrderDateTo:      c.Query("lastOrderDateTo"),
		TotalAmountFrom:      c.Query("totalAmountFrom"),
		TotalAmountTo:        c.Query("totalAmountTo"),
		OrderCountFrom:       c.Query("orderCountFrom"),
		OrderCountTo:         c.Query("orderCountTo"),
	}

	page, err := h.service.ListCustomers(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}

	customers := page.Customers
	if customers == nil {
		customers = []models.Customer{}
	}
	return c.JSON(fiber.Map{
		"customers":  customers,
		"pagination": paginationMap("totalCustomers", page.Total, page.Page, page.Limit),
	})
}
