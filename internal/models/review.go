package models

import "time"

// Review is a user's free-text review of a product. ProductID is not checked
// against the catalog.
type Review struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Review    string    `json:"review"`
	ProductID string    `json:"productId" gorm:"index;type:varchar(64)"`
	UserName  string    `json:"userName" gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"createdAt"`
}
