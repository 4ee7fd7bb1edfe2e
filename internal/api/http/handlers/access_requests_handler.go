package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/api/dto"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// AccessRequestsHandler manages access request endpoints.
type AccessRequestsHandler struct {
	service *service.AccessRequestService
}

// NewAccessRequestsHandler constructs handler.
func NewAccessRequestsHandler(svc *service.AccessRequestService) *AccessRequestsHandler {
	return &AccessRequestsHandler{service: svc}
}

// List GET /api/access-requests.
func (h *AccessRequestsHandler) List(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"accessRequests": items})
}

// Create POST /api/access-requests.
func (h *AccessRequestsHandler) Create(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CreateAccessRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	item, err := h.service.Create(c.UserContext(), principal, service.AccessRequestCreateInput{
		Resource: req.Resource,
		UseCase:  req.UseCase,
		Duration: req.Duration,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"accessRequest": item})
}

// Review PATCH /api/access-requests/:id.
func (h *AccessRequestsHandler) Review(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	item, err := h.service.Review(c.UserContext(), principal, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"accessRequest": item})
}
