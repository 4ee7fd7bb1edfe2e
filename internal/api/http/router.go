package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/api/http/handlers"
	"github.com/spec-kit/gatelaunch/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Orders         *handlers.OrdersHandler
	AccessRequests *handlers.AccessRequestsHandler
	Receipts       *handlers.ReceiptsHandler
	Notifications  *handlers.NotificationsHandler
	AI             *handlers.AIHandler
	Public         *handlers.PublicHandler
	Integrations   *handlers.IntegrationsHandler
	Diagnostics    *handlers.DiagnosticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every protected route names its guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	session := cfg.AuthMiddleware.Handle
	staff := auth.RequireStaff()
	admin := auth.RequireAdmin()

	api := app.Group("/api")

	api.Post("/signup", cfg.Auth.Signup)
	api.Post("/login", cfg.Auth.Login)
	api.Post("/public/assistant", cfg.Public.Assistant)
	api.Post("/public/support-request", cfg.Public.SupportRequest)

	api.Post("/logout", session, cfg.Auth.Logout)
	api.Get("/me", session, cfg.Auth.Me)

	api.Get("/tickets", session, cfg.Tickets.ListTickets)
	api.Post("/tickets", session, cfg.Tickets.CreateTicket)
	api.Patch("/tickets/:id", session, staff, cfg.Tickets.UpdateStatus)

	api.Get("/access-requests", session, cfg.AccessRequests.List)
	api.Post("/access-requests", session, cfg.AccessRequests.Create)
	api.Patch("/access-requests/:id", session, staff, cfg.AccessRequests.Review)

	api.Get("/orders", session, cfg.Orders.ListOrders)
	api.Post("/orders", session, cfg.Orders.CreateOrder)
	api.Patch("/orders/:id", session, staff, cfg.Orders.ReviewOrder)

	api.Post("/uploads/proof", session, cfg.Receipts.UploadProof)
	api.Get("/uploads/proof/:fileName", session, cfg.Receipts.DownloadProof)
	api.Get("/payment-receipts", session, cfg.Receipts.List)
	api.Post("/payment-receipts", session, cfg.Receipts.Create)

	api.Get("/support-requests", session, staff, cfg.Public.ListSupportRequests)

	api.Get("/notifications", session, staff, cfg.Notifications.List)
	api.Get("/notifications/stream", session, staff, cfg.Notifications.Stream)
	api.Patch("/notifications/read-all", session, staff, cfg.Notifications.MarkAllRead)
	api.Patch("/notifications/:id/read", session, staff, cfg.Notifications.MarkRead)

	api.Get("/integrations/status", session, admin, cfg.Integrations.Status)
	api.Get("/integrations/recent", session, admin, cfg.Integrations.Recent)
	api.Post("/integrations/test", session, admin, cfg.Integrations.Test)
	api.Get("/integrations/telegram/check", session, admin, cfg.Integrations.TelegramCheck)
	api.Post("/integrations/telegram/test", session, admin, cfg.Integrations.TelegramTest)
	api.Get("/integrations/n8n/check", session, admin, cfg.Integrations.N8NCheck)

	api.Get("/ai/status", session, cfg.AI.Status)
	api.Get("/ai/insights", session, cfg.AI.Insights)
	api.Post("/ai/sync", session, admin, cfg.AI.Sync)
	api.Post("/ai/assistant", session, cfg.AI.Assistant)

	api.Get("/storage/health", session, admin, cfg.Diagnostics.StorageHealth)
	api.Post("/storage/backup", session, admin, cfg.Diagnostics.Backup)
	api.Get("/metrics/performance", session, admin, cfg.Diagnostics.Performance)

	app.Use(NotFound)
}
