package models

import "time"

// Product represents a catalog entry. A nil Price means the product is not
// currently sellable; it still appears in listings and historical orders.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string    `json:"title" gorm:"type:varchar(200)" validate:"required,min=3,max=200"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Price       *float64  `json:"price" validate:"omitempty,gt=0"`
	Image       string    `json:"image,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}

// Sellable reports whether the product can be placed in a new order.
func (p *Product) Sellable() bool {
	return p.Price != nil
}
