package models

import "time"

// Product represents a catalog entry.
type Product struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Image       string    `json:"image"`
	Title       string    `json:"title" gorm:"type:varchar(255)"`
	Rating      float64   `json:"rating"`
	Price       float64   `json:"price"`
	Brand       string    `json:"brand" gorm:"type:varchar(100)"`
	Description string    `json:"description"`
	Sale        bool      `json:"sale"`
	SalePrice   float64   `json:"salePrice"`
	Category    string    `json:"category,omitempty" gorm:"index;type:varchar(100)"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Category string // exact match, empty means any
	Page     Page
}
