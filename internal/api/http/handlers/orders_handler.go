package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/api/dto"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// OrdersHandler manages top-up order endpoints.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// ListOrders GET /api/orders.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	orders, err := h.service.List(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// CreateOrder POST /api/orders.
func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CreateOrderRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	order, err := h.service.Create(c.UserContext(), principal, service.OrderCreateInput{
		Game:       req.Game,
		PlayerID:   req.PlayerID,
		Amount:     float64(req.Amount),
		Wallet:     req.Wallet,
		Sender:     req.Sender,
		PaymentRef: req.PaymentRef,
		ProofURL:   req.ProofURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"order": order})
}

// ReviewOrder PATCH /api/orders/:id.
func (h *OrdersHandler) ReviewOrder(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	order, err := h.service.Review(c.UserContext(), principal, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"order": order})
}
