package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gatelaunch/internal/domain"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

type stubUsers map[string]domain.User

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, errors.New("missing")
	}
	return &u, nil
}

func newTestApp(t *testing.T, secure string) (*fiber.App, *SessionRegistry, *AuthMiddleware) {
	t.Helper()
	registry := NewSessionRegistry(time.Hour, nil)
	users := stubUsers{
		"u1": {ID: "u1", Email: "u@x.io", Role: domain.RoleUser},
		"s1": {ID: "s1", Email: "s@x.io", Role: domain.RoleSupervisor},
		"a1": {ID: "a1", Email: "a@x.io", Role: domain.RoleAdmin},
	}
	mw := NewAuthMiddleware(registry, users, CookieSettings{Name: "gl_session", Secure: secure, TrustForwardedProto: true})

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Message})
	}})
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/me", mw.Handle, RequireAuthenticated(), ok)
	app.Get("/staff", mw.Handle, RequireStaff(), ok)
	app.Get("/admin", mw.Handle, RequireAdmin(), ok)
	app.Post("/login/:id", func(c *fiber.Ctx) error {
		session, err := registry.Create(c.Params("id"))
		if err != nil {
			return err
		}
		mw.SetSessionCookie(c, session)
		return c.SendString(session.Token)
	})
	return app, registry, mw
}

func TestUnauthenticatedIs401(t *testing.T) {
	app, _, _ := newTestApp(t, "auto")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
}

func TestBearerAndCookieTransport(t *testing.T) {
	app, registry, _ := newTestApp(t, "auto")
	session, err := registry.Create("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "gl_session", Value: session.Token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoleGuards(t *testing.T) {
	app, registry, _ := newTestApp(t, "auto")
	tokens := map[string]string{}
	for _, id := range []string{"u1", "s1", "a1"} {
		s, err := registry.Create(id)
		require.NoError(t, err)
		tokens[id] = s.Token
	}

	cases := []struct {
		path string
		user string
		want int
	}{
		{"/staff", "u1", http.StatusForbidden},
		{"/staff", "s1", http.StatusOK},
		{"/staff", "a1", http.StatusOK},
		{"/admin", "s1", http.StatusForbidden},
		{"/admin", "a1", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+tokens[tc.user])
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "%s as %s", tc.path, tc.user)
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	app, _, _ := newTestApp(t, "auto")

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login/u1", nil))
	require.NoError(t, err)
	cookie := resp.Header.Get("Set-Cookie")
	assert.Contains(t, cookie, "gl_session=")
	assert.Contains(t, strings.ToLower(cookie), "httponly")
	assert.Contains(t, strings.ToLower(cookie), "samesite=lax")
	assert.Contains(t, cookie, "max-age=3600")
	assert.NotContains(t, strings.ToLower(cookie), "secure")

	req := httptest.NewRequest(http.MethodPost, "/login/u1", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(resp.Header.Get("Set-Cookie")), "secure")
}

func TestCookieSecureForcedOff(t *testing.T) {
	app, _, _ := newTestApp(t, "false")
	req := httptest.NewRequest(http.MethodPost, "/login/u1", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(resp.Header.Get("Set-Cookie")), "secure")
}
