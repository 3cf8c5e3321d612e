package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"stylesync/internal/metrics"
	"stylesync/internal/models"
	"stylesync/internal/repositories"
)

// Routing keys of the order events.
const (
	EventOrderCreated   = "order.created"
	EventOrderDelivered = "order.delivered"
)

// EventPublisher sends an event body under a routing key.
// *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEvent is the JSON body of an order event.
type OrderEvent struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher // nil disables events
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateOrder stores the caller's fields as a new order stamped with the
// current time. Server-owned keys in fields are ignored; userId, when
// present, must be a string.
func (s *OrderService) CreateOrder(ctx context.Context, fields map[string]any) (*models.Order, error) {
	fields = maps.Clone(fields)
	if fields == nil {
		fields = map[string]any{}
	}
	for _, k := range models.ServerOwnedOrderKeys {
		delete(fields, k)
	}

	var userID string
	if raw, ok := fields["userId"]; ok {
		id, isString := raw.(string)
		if !isString {
			return nil, fmt.Errorf("userId must be a string: %w", ErrBadRequest)
		}
		userID = id
		delete(fields, "userId")
	}

	order := &models.Order{
		UserID:    userID,
		Fields:    fields,
		CreatedAt: s.now().UTC(),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publish(ctx, EventOrderCreated, OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		OccurredAt: order.CreatedAt,
	})
	return order, nil
}

// ListOrders retrieves all orders.
func (s *OrderService) ListOrders(ctx context.Context, page models.Page) ([]models.Order, error) {
	return s.orderRepo.List(ctx, page)
}

// ListOrdersByUser retrieves the orders placed by one user.
func (s *OrderService) ListOrdersByUser(ctx context.Context, userID string, page models.Page) ([]models.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID, page)
}

// MarkDelivered sets the order status to delivered whatever it was before.
// Repeating the call is harmless; it reports zero modified documents.
func (s *OrderService) MarkDelivered(ctx context.Context, id string) (models.UpdateResult, error) {
	res, err := s.orderRepo.SetStatus(ctx, id, models.OrderStatusDelivered)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("failed to mark order %s delivered: %w", id, err)
	}

	if res.ModifiedCount > 0 {
		s.publish(ctx, EventOrderDelivered, OrderEvent{
			OrderID:    id,
			Status:     models.OrderStatusDelivered,
			OccurredAt: s.now().UTC(),
		})
	}
	return res, nil
}

// publish never fails the caller: the order is already stored.
func (s *OrderService) publish(ctx context.Context, routingKey string, event OrderEvent) {
	if s.publisher == nil {
		metrics.OrderEvents.WithLabelValues(routingKey, "disabled").Inc()
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal order event", "event", routingKey, "error", err)
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		metrics.OrderEvents.WithLabelValues(routingKey, "failed").Inc()
		slog.WarnContext(ctx, "failed to publish order event", "event", routingKey, "order_id", event.OrderID, "error", err)
		return
	}
	metrics.OrderEvents.WithLabelValues(routingKey, "published").Inc()
}
