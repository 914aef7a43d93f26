package model

import (
	"math"
	"time"
)

// CartItem is one cart line. Name, price, category and unit are copied from
// the product when the line is created and never refreshed afterwards.
type CartItem struct {
	ProductID ID      `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	Unit      string  `json:"unit"`
	Quantity  int     `json:"quantity"`
}

// NewCartItem snapshots a product into a line with quantity 1
func NewCartItem(p Product) CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.WholesalePrice,
		Category:  p.CategoryName,
		Unit:      p.Unit,
		Quantity:  1,
	}
}

// Subtotal is price times quantity rounded to cents
func (i CartItem) Subtotal() float64 {
	return RoundCents(i.Price * float64(i.Quantity))
}

// CartSlot is a named persisted cart payload
type CartSlot struct {
	Name      string    `json:"name" gorm:"primarykey;type:varchar(100)"`
	Payload   string    `json:"payload" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoundCents rounds a monetary amount to two decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
