package http

import (
	"github.com/gofiber/fiber/v2"
)

// ServerConfig controls the fiber application.
type ServerConfig struct {
	AppName    string
	BodyLimit  int
	Middleware MiddlewareConfig
	Routes     RouteConfig
}

// NewApp builds the fiber application with middleware and routes attached.
func NewApp(cfg ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(cfg.Middleware.Logger),
	})
	RegisterMiddlewares(app, cfg.Middleware)
	RegisterRoutes(app, cfg.Routes)
	return app
}
