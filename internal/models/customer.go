package models

import "time"

// Customer roles.
const (
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// Customer represents a registered customer of the store.
// TotalAmount, OrderCount, LastOrderID and LastOrderDate are maintained by
// the order-persistence path and stay consistent with the order history.
type Customer struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string     `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email         string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password      string     `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role          string     `json:"role" gorm:"type:varchar(16);default:customer"`
	TotalAmount   float64    `json:"totalAmount"`
	OrderCount    int        `json:"orderCount"`
	LastOrderID   *string    `json:"lastOrderId,omitempty" gorm:"type:varchar(36)"`
	LastOrderDate *time.Time `json:"lastOrderDate,omitempty"`
	LastOrder     *Order     `json:"lastOrder,omitempty" gorm:"foreignKey:LastOrderID"`
	Orders        []Order    `json:"orders,omitempty" gorm:"foreignKey:CustomerID"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"-"`
}
