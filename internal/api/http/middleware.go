package http

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/observability"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

const contentSecurityPolicy = "default-src 'self'; script-src 'self'; " +
	"style-src 'self' https://fonts.googleapis.com 'unsafe-inline'; font-src 'self' https://fonts.gstatic.com; " +
	"img-src 'self' data:; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'"

var loopbackOrigin = regexp.MustCompile(`(?i)^https?://(localhost|127\.0\.0\.1)(:\d+)?$`)

// MiddlewareConfig bundles the settings for the global middleware chain.
type MiddlewareConfig struct {
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Timeout        time.Duration
	Port           string
	AllowedOrigins []string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	app.Use(errorHandlingMiddleware(cfg.Logger))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			cfg.Logger.Error("panic recovered", zap.Any("panic", e), zap.ByteString("stack", debug.Stack()))
		},
	}))
	app.Use(securityHeaders())
	app.Use(originGuard(cfg.Port, cfg.AllowedOrigins))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

// ErrorHandler renders errors that escape the middleware chain, such as an
// oversized body rejected by fasthttp.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return renderError(c, logger, err)
	}
}

// NotFound is registered after every route.
func NotFound(c *fiber.Ctx) error {
	return apperrors.NewDomainError("NOT_FOUND", "Not found", fiber.StatusNotFound)
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return renderError(c, logger, err)
		}
		return nil
	}
}

func renderError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status, message := fiber.StatusInternalServerError, "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status, message = fe.Code, fe.Message
		if status == fiber.StatusNotFound {
			message = "Not found"
		}
	} else {
		domainErr := apperrors.ToDomainError(err)
		status, message = domainErr.HTTPStatus, domainErr.Message
	}
	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// securityHeaders applies helmet plus the CORS method and header allowances.
func securityHeaders() fiber.Handler {
	h := helmet.New(helmet.Config{
		XSSProtection:             "0",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		ReferrerPolicy:            "no-referrer",
		ContentSecurityPolicy:     contentSecurityPolicy,
		PermissionPolicy:          "camera=(), microphone=(), geolocation=()",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	})
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET,POST,PATCH,OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, Authorization, X-Filename, X-Filetype")
		return h(c)
	}
}

// originGuard rejects cross-origin requests whose Origin is not allow-listed.
// Loopback origins are always accepted. Preflight requests end here.
func originGuard(port string, extra []string) fiber.Handler {
	allowed := map[string]bool{
		"http://localhost:8080": true,
		"http://127.0.0.1:8080": true,
	}
	if port != "" {
		allowed[fmt.Sprintf("http://localhost:%s", port)] = true
		allowed[fmt.Sprintf("http://127.0.0.1:%s", port)] = true
	}
	for _, origin := range extra {
		allowed[origin] = true
	}

	return func(c *fiber.Ctx) error {
		if origin := c.Get(fiber.HeaderOrigin); origin != "" {
			if !allowed[origin] && !loopbackOrigin.MatchString(origin) {
				return apperrors.NewForbidden("Origin not allowed")
			}
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Vary(fiber.HeaderOrigin)
			c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		}
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}
