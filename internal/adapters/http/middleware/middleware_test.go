package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/jwt"
)

type stubAuthorizer struct {
	grants domain.Grants
	err    error
	seen   []string
}

func (s *stubAuthorizer) Authorize(_ context.Context, userID uint, action string) (domain.Decision, error) {
	s.seen = append(s.seen, action)
	if s.err != nil {
		return domain.Decision{}, s.err
	}
	g := s.grants
	g.UserID = userID
	return domain.Authorize(g, action, false), nil
}

func asUser(id uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", id)
		return c.Next()
	}
}

func newGuardedApp(authz Authorizer, user fiber.Handler) *fiber.App {
	app := fiber.New()
	guard := NewGuard(authz)
	app.Use(user)
	app.Add(fiber.MethodGet, "/payments/summary", guard.Require(""), func(c *fiber.Ctx) error {
		perms, _ := c.Locals("permissions").([]string)
		return c.JSON(perms)
	}).Name("payments.summary")
	app.Add(fiber.MethodDelete, "/roles/:id", guard.Require("roles.destroy"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Add(fiber.MethodGet, "/me/access", guard.Require("auth.access"), func(c *fiber.Ctx) error {
		perms, _ := c.Locals("permissions").([]string)
		unrestricted, _ := c.Locals("unrestricted").(bool)
		return c.JSON(fiber.Map{"permissions": perms, "unrestricted": unrestricted})
	})
	return app
}

func decodeBody(t *testing.T, body io.Reader, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func TestGuard_AllowsGrantedRouteName(t *testing.T) {
	authz := &stubAuthorizer{grants: domain.Grants{Permissions: []string{"payments.summary", "payments.index"}}}
	app := newGuardedApp(authz, asUser(3))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/payments/summary", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"payments.summary"}, authz.seen)

	var perms []string
	decodeBody(t, resp.Body, &perms)
	assert.Equal(t, []string{"payments.index", "payments.summary"}, perms)
}

func TestGuard_DeniesMissingPermission(t *testing.T) {
	authz := &stubAuthorizer{grants: domain.Grants{Permissions: []string{"roles.index"}}}
	app := newGuardedApp(authz, asUser(3))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/roles/9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, []string{"roles.destroy"}, authz.seen)

	var body map[string]any
	decodeBody(t, resp.Body, &body)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestGuard_BypassRole(t *testing.T) {
	authz := &stubAuthorizer{grants: domain.Grants{Roles: []domain.RoleGrant{{Name: "Partner", Level: 8}}}}
	app := newGuardedApp(authz, asUser(1))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/roles/9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/me/access", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Permissions  []string `json:"permissions"`
		Unrestricted bool     `json:"unrestricted"`
	}
	decodeBody(t, resp.Body, &out)
	assert.True(t, out.Unrestricted)
	assert.NotNil(t, out.Permissions)
}

func TestGuard_SkipsAnonymousRequests(t *testing.T) {
	authz := &stubAuthorizer{}
	app := newGuardedApp(authz, func(c *fiber.Ctx) error { return c.Next() })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/roles/9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Empty(t, authz.seen)
}

func TestGuard_UnnamedRouteFailsClosed(t *testing.T) {
	authz := &stubAuthorizer{grants: domain.Grants{Permissions: []string{"anything"}}}
	app := fiber.New()
	app.Use(asUser(3))
	app.Get("/unnamed", NewGuard(authz).Require(""), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/unnamed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGuard_AuthorizerFailures(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		app := newGuardedApp(&stubAuthorizer{err: domain.NotFound("user")}, asUser(3))
		resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/roles/9", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("storage error", func(t *testing.T) {
		app := newGuardedApp(&stubAuthorizer{err: domain.Unexpected(errors.New("db down"))}, asUser(3))
		resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/roles/9", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

type managerValidator struct{ m *jwt.Manager }

func (v managerValidator) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return v.m.ParseAccess(token)
}

func TestAuthMiddleware(t *testing.T) {
	m := jwt.NewManager("access-secret", "refresh-secret", 15, 7)
	app := fiber.New()
	app.Get("/me", AuthMiddleware(managerValidator{m}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": c.Locals("userID"), "email": c.Locals("email")})
	})

	token, err := m.AccessToken(12, "ana@lawdesk.test", "Ana")
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]any
		decodeBody(t, resp.Body, &body)
		assert.Equal(t, float64(12), body["id"])
		assert.Equal(t, "ana@lawdesk.test", body["email"])
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set("Cookie", "access_token="+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("forged token", func(t *testing.T) {
		forged, err := jwt.NewManager("other", "other", 15, 7).AccessToken(12, "ana@lawdesk.test", "Ana")
		require.NoError(t, err)
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
