package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/api/dto"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// AIHandler serves insights, sync and the assistant.
type AIHandler struct {
	insights *service.InsightService
}

// NewAIHandler constructs handler.
func NewAIHandler(insights *service.InsightService) *AIHandler {
	return &AIHandler{insights: insights}
}

// Status GET /api/ai/status.
func (h *AIHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"aiSync": h.insights.Status()})
}

// Insights GET /api/ai/insights.
func (h *AIHandler) Insights(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	insights, err := h.insights.Build(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"insights": insights})
}

// Sync POST /api/ai/sync.
func (h *AIHandler) Sync(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.SyncRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	res, err := h.insights.ManualSync(c.UserContext(), principal, req.Force)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Assistant POST /api/ai/assistant.
func (h *AIHandler) Assistant(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.AssistantRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	reply, err := h.insights.Assistant(c.UserContext(), principal, req.Message, req.Scope)
	if err != nil {
		return err
	}
	return c.JSON(reply)
}
