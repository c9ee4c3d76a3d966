package query

import "time"

// Listing bounds. The limit ceiling is a hard server-side cap, independent
// of what the client asks for.
const (
	DefaultPage       = 1
	DefaultLimit      = 10
	MaxLimit          = 10
	MaxSearchLength   = 50
	MaxAddressMatches = 50
)

// SortDirection is the closed set of accepted sort directions.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortField is the closed set of sortable fields across both resources.
// Each resource accepts only its own subset.
type SortField string

const (
	SortCreatedAt     SortField = "createdAt"
	SortTotalAmount   SortField = "totalAmount"
	SortOrderCount    SortField = "orderCount"
	SortLastOrderDate SortField = "lastOrderDate"
	SortName          SortField = "name"
	SortOrderNumber   SortField = "orderNumber"
	SortStatus        SortField = "status"
)

// CustomerSortFields is the allow-list for the customers resource.
var CustomerSortFields = map[SortField]bool{
	SortCreatedAt:     true,
	SortTotalAmount:   true,
	SortOrderCount:    true,
	SortLastOrderDate: true,
	SortName:          true,
}

// OrderSortFields is the allow-list for the orders resource.
var OrderSortFields = map[SortField]bool{
	SortCreatedAt:   true,
	SortTotalAmount: true,
	SortOrderNumber: true,
	SortStatus:      true,
}

// Filterable field keys. Repositories map them onto storage columns.
const (
	FieldCreatedAt     = "createdAt"
	FieldLastOrderDate = "lastOrderDate"
	FieldTotalAmount   = "totalAmount"
	FieldOrderCount    = "orderCount"
	FieldStatus        = "status"
)

// Condition holds every predicate active for one field. Range bounds merge
// into a single inclusive interval; a later bound never overwrites an
// earlier one on the other side.
type Condition struct {
	Equals     any
	NumberFrom *float64
	NumberTo   *float64
	TimeFrom   *time.Time
	TimeTo     *time.Time
}

// Descriptor is the sanitized filter/sort/pagination state for one request.
// It is built per request and discarded after the query runs.
type Descriptor struct {
	Page          int
	Limit         int
	SortField     SortField
	SortDirection SortDirection
	Conditions    map[string]*Condition
}

// Offset returns the number of records the page window skips.
func (d *Descriptor) Offset() int {
	return (d.Page - 1) * d.Limit
}

func (d *Descriptor) condition(field string) *Condition {
	if d.Conditions == nil {
		d.Conditions = make(map[string]*Condition)
	}
	c, ok := d.Conditions[field]
	if !ok {
		c = &Condition{}
		d.Conditions[field] = c
	}
	return c
}
