package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	helper "admissions_backend/internals/helpers"
)

// Locals keys written by the AuthJWT middleware.
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
	LocUserName = "user_name"
	LocRawToken = "raw_token"
)

// GetUserID returns the authenticated staff user id.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	s, _ := c.Locals(LocUserID).(string)
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing or invalid user id")
	}
	return id, nil
}

// GetUserIDPtr is GetUserID for nullable created_by columns.
func GetUserIDPtr(c *fiber.Ctx) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

func GetRole(c *fiber.Ctx) string {
	r, _ := c.Locals(LocUserRole).(string)
	return r
}

func GetUserName(c *fiber.Ctx) string {
	n, _ := c.Locals(LocUserName).(string)
	return n
}

func HasAnyRole(c *fiber.Ctx, roles ...string) bool {
	role := GetRole(c)
	for _, r := range roles {
		if strings.EqualFold(role, r) {
			return true
		}
	}
	return false
}

// RequireRole returns ErrForbidden when the caller has none of roles.
func RequireRole(c *fiber.Ctx, roles ...string) error {
	if HasAnyRole(c, roles...) {
		return nil
	}
	return helper.ErrForbidden
}

// GetRawAccessToken reads the bearer token from Locals, the Authorization
// header or the access_token cookie, in that order.
func GetRawAccessToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocRawToken).(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	fields := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		return strings.Trim(fields[1], `"'`)
	}
	return strings.TrimSpace(c.Cookies("access_token"))
}
