package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/domain"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

const principalKey = "auth_principal"

// UserLookup loads accounts by id.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// CookieSettings controls how the session token travels to browsers.
type CookieSettings struct {
	Name                string
	Secure              string // auto, true or false
	TrustForwardedProto bool
}

// AuthMiddleware resolves session tokens into principals.
type AuthMiddleware struct {
	sessions *SessionRegistry
	users    UserLookup
	cookie   CookieSettings
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *SessionRegistry, users UserLookup, cookie CookieSettings) *AuthMiddleware {
	if cookie.Name == "" {
		cookie.Name = "gl_session"
	}
	return &AuthMiddleware{sessions: sessions, users: users, cookie: cookie}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, ok := m.resolve(c)
	if !ok {
		return apperrors.NewUnauthorized("")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx) (*Principal, bool) {
	token := m.TokenFromRequest(c)
	session, ok := m.sessions.Resolve(token)
	if !ok {
		return nil, false
	}
	user, err := m.users.GetByID(c.UserContext(), session.UserID)
	if err != nil || user == nil {
		return nil, false
	}
	return &Principal{User: *user, Session: session}, true
}

// TokenFromRequest reads the session cookie, falling back to a bearer header.
func (m *AuthMiddleware) TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(m.cookie.Name); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SetSessionCookie writes the session cookie for the response.
func (m *AuthMiddleware) SetSessionCookie(c *fiber.Ctx, session domain.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(m.sessions.TTL() / time.Second),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   m.secure(c),
	})
}

// ClearSessionCookie expires the session cookie.
func (m *AuthMiddleware) ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   m.secure(c),
	})
}

func (m *AuthMiddleware) secure(c *fiber.Ctx) bool {
	switch m.cookie.Secure {
	case "true":
		return true
	case "false":
		return false
	}
	if c.Context().IsTLS() {
		return true
	}
	if !m.cookie.TrustForwardedProto {
		return false
	}
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderXForwardedProto)), "https")
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
