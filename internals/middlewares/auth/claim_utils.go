package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ======== Extractors ======== */

func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", errors.New("unauthorized - no token provided")
	}

	// tolerate repeated spaces and any casing of "Bearer"
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errors.New("unauthorized - invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", errors.New("unauthorized - empty token")
	}
	return tok, nil
}

/* ======== DB backed checks ======== */

// UserActiveFromDB checks users.user_is_active for live rows.
func UserActiveFromDB(db *gorm.DB) UserActiveFunc {
	return func(ctx context.Context, userID uuid.UUID) (bool, error) {
		var row struct {
			UserIsActive bool
		}
		err := db.WithContext(ctx).
			Table("users").
			Select("user_is_active").
			Where("user_id = ? AND user_deleted_at IS NULL", userID).
			Take(&row).Error
		if err != nil {
			return false, err
		}
		return row.UserIsActive, nil
	}
}
