package services

import (
	"context"

	"backoffice/internal/models"
	"backoffice/internal/query"
	"backoffice/internal/repositories"
)

// CustomerPage is one page of a customer listing plus the figures the
// response envelope needs.
type CustomerPage struct {
	Customers []models.Customer
	Total     int64
	Page      int
	Limit     int
}

// CustomerService handles business logic related to the customer listing.
type CustomerService struct {
	customerRepo repositories.CustomerRepository
	orderRepo    repositories.OrderRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customerRepo repositories.CustomerRepository, orderRepo repositories.OrderRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// ListCustomers composes the filter descriptor and runs the listing. When a
// search term is present, orders whose delivery address contains the term
// are resolved first (bounded by MaxAddressMatches) and folded into the
// filter as an equality set on the customer's last order, instead of a
// two-hop join inside the primary query.
func (s *CustomerService) ListCustomers(ctx context.Context, params query.CustomerListParams) (*CustomerPage, error) {
	filter, err := query.ComposeCustomerFilter(params)
	if err != nil {
		return nil, err
	}
	if filter.Search != nil {
		ids, err := s.orderRepo.SearchIDsByAddress(ctx, filter.Search.Term, query.MaxAddressMatches)
		if err != nil {
			return nil, err
		}
		filter.Search.LastOrderIDs = ids
	}

	customers, total, err := s.customerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &CustomerPage{Customers: customers, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
