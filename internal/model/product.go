package model

import (
	"fmt"
	"strconv"
)

// Product is a catalog entry. Products are immutable once the catalog is loaded.
type Product struct {
	ID             ID       `json:"id"`
	Name           string   `json:"product_name"`
	CategoryID     ID       `json:"category_id"`
	CategoryName   string   `json:"category_name"`
	WholesalePrice float64  `json:"wholesale_price"`
	Unit           string   `json:"unit"`
	Liters         *float64 `json:"liters,omitempty"`
}

// SizeLabel is the volume in liters when known, otherwise the sales unit
func (p Product) SizeLabel() string {
	if p.Liters != nil && *p.Liters != 0 {
		return strconv.FormatFloat(*p.Liters, 'f', -1, 64) + " لتر"
	}
	return p.Unit
}

// PriceLabel formats the wholesale price with two decimals
func (p Product) PriceLabel() string {
	return fmt.Sprintf("%.2f", p.WholesalePrice)
}

// Category groups products
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// CatalogDocument is the payload served by the catalog source.
// Pointers distinguish a missing key from an empty list.
type CatalogDocument struct {
	Products   *[]Product  `json:"products"`
	Categories *[]Category `json:"categories"`
}
