package models

import "time"

// OrderStatus is the closed set of states an order can be in.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "created"
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus maps a raw string onto the closed status set.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusCreated, StatusPending, StatusCompleted, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// Order represents a customer order. OrderNumber is the sequential
// human-facing identifier used for public lookups; ID stays internal.
// TotalAmount equals the sum of the item prices at creation time; this is
// enforced once, when the order is created.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber int64       `json:"orderNumber" gorm:"uniqueIndex"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(16);index"`
	TotalAmount float64     `json:"totalAmount"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CustomerID  string      `json:"customerId" gorm:"type:varchar(36);index"`
	Customer    *Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Address     string      `json:"address" gorm:"type:varchar(255)"`
	Phone       string      `json:"phone" gorm:"type:varchar(20)"`
	Email       string      `json:"email" gorm:"type:varchar(255)"`
	Comment     string      `json:"comment"`
	Payment     string      `json:"payment" gorm:"type:varchar(50)"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"-"`
}

// OrderCounter is the single-row sequence behind public order numbers. The
// creating transaction increments it under a row lock, so two concurrent
// creates can never draw the same number.
type OrderCounter struct {
	ID    uint `gorm:"primaryKey"`
	Value int64
}

// OrderItem is one purchased unit within an order. Duplicate products get
// one row each; Position preserves the submitted basket order.
type OrderItem struct {
	ID        uint     `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string   `json:"-" gorm:"type:varchar(36);index"`
	ProductID string   `json:"productId" gorm:"type:varchar(36);index"`
	Position  int      `json:"position"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
