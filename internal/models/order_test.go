package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMarshalJSONFlattensFields(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	o := Order{
		ID:        "o1",
		UserID:    "u1",
		CreatedAt: created,
		Fields: map[string]any{
			"userId": "u1",
			"total":  42.5,
			"_id":    "spoofed",
		},
	}

	b, err := json.Marshal(o)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"o1","userId":"u1","total":42.5,"createdAt":"2024-03-01T12:00:00Z"}`, string(b))

	o.Status = OrderStatusDelivered
	b, err = json.Marshal(&o)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "delivered", got["status"])
}

func TestApply(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		page Page
		want []int
	}{
		{"zero page returns all", Page{}, []int{1, 2, 3, 4, 5}},
		{"limit", Page{Limit: 2}, []int{1, 2}},
		{"offset", Page{Offset: 3}, []int{4, 5}},
		{"limit and offset", Page{Limit: 2, Offset: 1}, []int{2, 3}},
		{"limit past end", Page{Limit: 10, Offset: 4}, []int{5}},
		{"offset past end", Page{Offset: 9}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(items, tt.page)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}
