package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/api/dto"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// IntegrationsHandler serves provider diagnostics.
type IntegrationsHandler struct {
	service *service.IntegrationService
}

// NewIntegrationsHandler constructs handler.
func NewIntegrationsHandler(svc *service.IntegrationService) *IntegrationsHandler {
	return &IntegrationsHandler{service: svc}
}

// Status GET /api/integrations/status.
func (h *IntegrationsHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"integrations": h.service.Status()})
}

// Test POST /api/integrations/test.
func (h *IntegrationsHandler) Test(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	results, err := h.service.Test(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"results": results})
}

// Recent GET /api/integrations/recent.
func (h *IntegrationsHandler) Recent(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"dispatches": h.service.Recent()})
}

// TelegramCheck GET /api/integrations/telegram/check.
func (h *IntegrationsHandler) TelegramCheck(c *fiber.Ctx) error {
	check, err := h.service.TelegramCheck(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"configured": true,
		"bot":        fiber.Map{"username": check.BotUsername},
		"chat":       fiber.Map{"title": check.ChatTitle, "type": check.ChatType},
	})
}

// TelegramTest POST /api/integrations/telegram/test.
func (h *IntegrationsHandler) TelegramTest(c *fiber.Ctx) error {
	var req dto.TelegramTestRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.TelegramTest(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// N8NCheck GET /api/integrations/n8n/check.
func (h *IntegrationsHandler) N8NCheck(c *fiber.Ctx) error {
	reply, err := h.service.N8NCheck(c.UserContext(), callerOrAnonymous(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"configured": true, "reachable": true, "result": reply})
}
