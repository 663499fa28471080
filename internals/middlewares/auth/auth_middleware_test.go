package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

const testSecret = "middleware-secret"

type fakeBlacklist map[string]bool

func (f fakeBlacklist) IsBlacklisted(_ context.Context, raw string) (bool, error) {
	return f[raw], nil
}

func newApp(cfg Config, roles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.FiberErrorHandler})
	handlers := []fiber.Handler{AuthJWT(cfg)}
	if len(roles) > 0 {
		handlers = append(handlers, OnlyRoles("", roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.SendString(helperAuth.GetRole(c) + ":" + helperAuth.GetUserName(c))
	})
	app.Get("/private", handlers...)
	return app
}

func token(t *testing.T, role string) (string, uuid.UUID) {
	uid := uuid.New()
	raw, _, err := helperAuth.IssueAccessToken(uid, role, "Staff", testSecret, time.Now())
	require.NoError(t, err)
	return raw, uid
}

func call(t *testing.T, app *fiber.App, bearer string) int {
	req := httptest.NewRequest("GET", "/private", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	return res.StatusCode
}

func TestAuthJWT(t *testing.T) {
	raw, _ := token(t, "counsellor")

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, call(t, newApp(Config{Secret: testSecret}), ""))
	})
	t.Run("bad signature", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, call(t, newApp(Config{Secret: "other"}), raw))
	})
	t.Run("valid", func(t *testing.T) {
		assert.Equal(t, fiber.StatusOK, call(t, newApp(Config{Secret: testSecret}), raw))
	})
	t.Run("blacklisted", func(t *testing.T) {
		app := newApp(Config{Secret: testSecret, Blacklist: fakeBlacklist{raw: true}})
		assert.Equal(t, fiber.StatusUnauthorized, call(t, app, raw))
	})
	t.Run("deactivated user", func(t *testing.T) {
		app := newApp(Config{Secret: testSecret, UserActive: func(context.Context, uuid.UUID) (bool, error) {
			return false, nil
		}})
		assert.Equal(t, fiber.StatusForbidden, call(t, app, raw))
	})
}

func TestOnlyRoles(t *testing.T) {
	raw, _ := token(t, "telecaller")
	assert.Equal(t, fiber.StatusForbidden, call(t, newApp(Config{Secret: testSecret}, "admin", "accountant"), raw))

	raw, _ = token(t, "Accountant")
	assert.Equal(t, fiber.StatusOK, call(t, newApp(Config{Secret: testSecret}, "admin", "accountant"), raw))
}
