package query

import (
	"strconv"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
)

// CustomerListParams carries the raw query parameters of a customer listing
// request. Parameters outside this set are ignored, never rejected.
type CustomerListParams struct {
	Page                 string
	Limit                string
	SortField            string
	SortDirection        string
	Search               string
	RegistrationDateFrom string
	RegistrationDateTo   string
	LastOrderDateFrom    string
	LastOrderDateTo      string
	TotalAmountFrom      string
	TotalAmountTo        string
	OrderCountFrom       string
	OrderCountTo         string
}

// OrderListParams carries the raw query parameters of an order listing
// request.
type OrderListParams struct {
	Page            string
	Limit           string
	SortField       string
	SortDirection   string
	Search          string
	Status          string
	TotalAmountFrom string
	TotalAmountTo   string
	CreatedAtFrom   string
	CreatedAtTo     string
}

// CustomerFilter is the composed filter descriptor for the customers
// resource. Search.LastOrderIDs is filled by the caller after resolving the
// matching delivery addresses.
type CustomerFilter struct {
	Descriptor
	Search *CustomerSearch
}

// OrderFilter is the composed filter descriptor for the orders resource.
// A non-empty CustomerID scopes the listing to that customer's orders.
type OrderFilter struct {
	Descriptor
	Search     *OrderSearch
	CustomerID string
}

// ComposeCustomerFilter sanitizes the raw parameters and merges every
// active predicate into one descriptor. Independent fields combine with
// AND; absent parameters leave the filter unconstrained.
func ComposeCustomerFilter(p CustomerListParams) (*CustomerFilter, error) {
	f := &CustomerFilter{Descriptor: Descriptor{
		Page:          sanitizePage(p.Page),
		Limit:         sanitizeLimit(p.Limit),
		SortField:     sanitizeSort(p.SortField, CustomerSortFields),
		SortDirection: sanitizeDirection(p.SortDirection),
	}}

	if err := composeTimeRange(&f.Descriptor, FieldCreatedAt,
		"registrationDateFrom", p.RegistrationDateFrom,
		"registrationDateTo", p.RegistrationDateTo); err != nil {
		return nil, err
	}
	if err := composeTimeRange(&f.Descriptor, FieldLastOrderDate,
		"lastOrderDateFrom", p.LastOrderDateFrom,
		"lastOrderDateTo", p.LastOrderDateTo); err != nil {
		return nil, err
	}
	if err := composeNumberRange(&f.Descriptor, FieldTotalAmount,
		"totalAmountFrom", p.TotalAmountFrom,
		"totalAmountTo", p.TotalAmountTo); err != nil {
		return nil, err
	}
	if err := composeNumberRange(&f.Descriptor, FieldOrderCount,
		"orderCountFrom", p.OrderCountFrom,
		"orderCountTo", p.OrderCountTo); err != nil {
		return nil, err
	}

	term, err := sanitizeSearch(p.Search)
	if err != nil {
		return nil, err
	}
	if term != "" {
		f.Search = &CustomerSearch{Term: term}
	}
	return f, nil
}

// ComposeOrderFilter sanitizes the raw parameters of an order listing into
// one descriptor. A search term that parses as a number additionally gets
// an exact-match predicate on the public order number.
func ComposeOrderFilter(p OrderListParams) (*OrderFilter, error) {
	f := &OrderFilter{Descriptor: Descriptor{
		Page:          sanitizePage(p.Page),
		Limit:         sanitizeLimit(p.Limit),
		SortField:     sanitizeSort(p.SortField, OrderSortFields),
		SortDirection: sanitizeDirection(p.SortDirection),
	}}

	if p.Status != "" {
		status, ok := models.ParseOrderStatus(p.Status)
		if !ok {
			return nil, apperr.BadRequest("invalid status %q", p.Status)
		}
		f.condition(FieldStatus).Equals = status
	}
	if err := composeNumberRange(&f.Descriptor, FieldTotalAmount,
		"totalAmountFrom", p.TotalAmountFrom,
		"totalAmountTo", p.TotalAmountTo); err != nil {
		return nil, err
	}
	if err := composeTimeRange(&f.Descriptor, FieldCreatedAt,
		"createdAtFrom", p.CreatedAtFrom,
		"createdAtTo", p.CreatedAtTo); err != nil {
		return nil, err
	}

	term, err := sanitizeSearch(p.Search)
	if err != nil {
		return nil, err
	}
	if term != "" {
		search := &OrderSearch{Term: term}
		if n, err := strconv.ParseInt(term, 10, 64); err == nil {
			search.OrderNumber = &n
		}
		f.Search = search
	}
	return f, nil
}

func composeTimeRange(d *Descriptor, field, fromName, fromRaw, toName, toRaw string) error {
	if fromRaw != "" {
		t, err := parseDate(fromName, fromRaw)
		if err != nil {
			return err
		}
		d.condition(field).TimeFrom = &t
	}
	if toRaw != "" {
		t, err := parseDate(toName, toRaw)
		if err != nil {
			return err
		}
		end := endOfDay(t)
		d.condition(field).TimeTo = &end
	}
	return nil
}

func composeNumberRange(d *Descriptor, field, fromName, fromRaw, toName, toRaw string) error {
	if fromRaw != "" {
		n, err := parseNumber(fromName, fromRaw)
		if err != nil {
			return err
		}
		d.condition(field).NumberFrom = &n
	}
	if toRaw != "" {
		n, err := parseNumber(toName, toRaw)
		if err != nil {
			return err
		}
		d.condition(field).NumberTo = &n
	}
	return nil
}
