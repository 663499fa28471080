package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	uid := uuid.New()
	raw, exp, err := IssueAccessToken(uid, "counsellor", "Meera", secret, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(AccessTTL), exp, 5*time.Second)

	claims, err := ParseAccessToken(raw, secret)
	require.NoError(t, err)
	assert.Equal(t, "counsellor", claims.Role)
	assert.Equal(t, "Meera", claims.Name)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uid, got)
}

func TestAccessTokenRejectsWrongSecretAndExpired(t *testing.T) {
	raw, _, err := IssueAccessToken(uuid.New(), "admin", "A", secret, time.Now())
	require.NoError(t, err)
	_, err = ParseAccessToken(raw, "other")
	assert.Error(t, err)

	old, _, err := IssueAccessToken(uuid.New(), "admin", "A", secret, time.Now().Add(-AccessTTL-time.Hour))
	require.NoError(t, err)
	_, err = ParseAccessToken(old, secret)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	uid := uuid.New()
	raw, _, err := IssueRefreshToken(uid, secret, time.Now())
	require.NoError(t, err)

	got, err := ParseRefreshToken(raw, secret)
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	assert.Equal(t, HashRefreshToken(raw, secret), HashRefreshToken(raw, secret))
	assert.NotEqual(t, HashRefreshToken(raw, secret), HashRefreshToken(raw, "x"))
}

func TestLocalsHelpers(t *testing.T) {
	app := fiber.New()
	uid := uuid.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(LocUserID, uid.String())
		c.Locals(LocUserRole, "accountant")
		c.Locals(LocUserName, "Ravi")

		got, err := GetUserID(c)
		require.NoError(t, err)
		assert.Equal(t, uid, got)
		assert.Equal(t, uid, *GetUserIDPtr(c))
		assert.Equal(t, "Ravi", GetUserName(c))
		assert.True(t, HasAnyRole(c, "admin", "accountant"))
		assert.Error(t, RequireRole(c, "registrar"))
		assert.Equal(t, "abc", GetRawAccessToken(c))
		return nil
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	_, err := app.Test(req)
	require.NoError(t, err)
}
