package handlers

import (
	"errors"

	"stylesync/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. guard wraps the mutating
// routes and may be nil.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:userId", h.HandleGetOrdersByUser)
	orderRoutes.Post("/", withGuard(guard, h.HandleCreateOrder)...)
	orderRoutes.Patch("/:id", withGuard(guard, h.HandleMarkDelivered)...)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid pagination", err)
	}

	orders, err := h.service.ListOrders(c.UserContext(), page)
	if err != nil {
		return failInternal(c, "Internal server error", err)
	}
	return respond(c, fiber.StatusOK, "Order retrieved successfully", orders)
}

// HandleGetOrdersByUser retrieves the orders of one user.
func (h *OrderHandler) HandleGetOrdersByUser(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid pagination", err)
	}

	orders, err := h.service.ListOrdersByUser(c.UserContext(), c.Params("userId"), page)
	if err != nil {
		return failInternal(c, "Internal server error", err)
	}
	return respond(c, fiber.StatusOK, "Order retrieved successfully", orders)
}

// HandleCreateOrder places an order. The body is any JSON object; its
// fields are stored as sent.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var fields map[string]any
	if err := c.BodyParser(&fields); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields == nil {
		return fail(c, fiber.StatusBadRequest, "Order body must be a JSON object", nil)
	}

	order, err := h.service.CreateOrder(c.UserContext(), fields)
	if err != nil {
		if errors.Is(err, services.ErrBadRequest) {
			return fail(c, fiber.StatusBadRequest, "Invalid order", err)
		}
		return failInternal(c, "Internal server error", err)
	}
	return respond(c, fiber.StatusOK, "Order placed successfully", order)
}

// HandleMarkDelivered moves an order to the delivered status.
func (h *OrderHandler) HandleMarkDelivered(c *fiber.Ctx) error {
	res, err := h.service.MarkDelivered(c.UserContext(), c.Params("id"))
	if err != nil {
		return failInternal(c, "Internal server error", err)
	}
	return respond(c, fiber.StatusOK, "Status updated successfully", res)
}
