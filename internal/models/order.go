package models

import (
	"encoding/json"
	"time"
)

// OrderStatusDelivered is the only status this service ever writes.
const OrderStatusDelivered = "delivered"

// Order is a customer order. Apart from the server-owned fields below, an
// order carries whatever the caller sent (items, totals, address...) in Fields.
type Order struct {
	ID        string         `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string         `json:"userId,omitempty" gorm:"index;type:varchar(64)"`
	Status    string         `json:"status,omitempty" gorm:"type:varchar(32)"`
	Fields    map[string]any `json:"-" gorm:"serializer:json"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ServerOwnedOrderKeys lists body keys that callers cannot set.
var ServerOwnedOrderKeys = []string{"_id", "id", "status", "createdAt"}

// UpdateResult reports the outcome of a single-document update.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// MarshalJSON flattens Fields next to the server-owned fields.
func (o Order) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(o.Fields)+4)
	for k, v := range o.Fields {
		out[k] = v
	}
	out["_id"] = o.ID
	out["createdAt"] = o.CreatedAt
	if o.UserID != "" {
		out["userId"] = o.UserID
	}
	if o.Status != "" {
		out["status"] = o.Status
	}
	return json.Marshal(out)
}
