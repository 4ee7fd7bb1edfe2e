package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/api/dto"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// PublicHandler serves unauthenticated intake endpoints.
type PublicHandler struct {
	insights *service.InsightService
	support  *service.SupportService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(insights *service.InsightService, support *service.SupportService) *PublicHandler {
	return &PublicHandler{insights: insights, support: support}
}

// Assistant POST /api/public/assistant.
func (h *PublicHandler) Assistant(c *fiber.Ctx) error {
	var req dto.AssistantRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	reply, err := h.insights.PublicAssistant(c.UserContext(), req.Message, req.Scope)
	if err != nil {
		return err
	}
	return c.JSON(reply)
}

// SupportRequest POST /api/public/support-request.
func (h *PublicHandler) SupportRequest(c *fiber.Ctx) error {
	var req dto.SupportRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	request, err := h.support.Submit(c.UserContext(), service.SupportRequestInput{
		Name:    req.Name,
		Email:   req.Email,
		Channel: req.Channel,
		Message: req.Message,
		Source:  req.Source,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"request": request})
}

// ListSupportRequests GET /api/support-requests.
func (h *PublicHandler) ListSupportRequests(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	items, err := h.support.List(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"supportRequests": items})
}
