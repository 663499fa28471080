package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	helperAuth "admissions_backend/internals/helpers/auth"
	"admissions_backend/internals/logger"
)

// UserActiveFunc reports whether the staff account may still use its tokens.
type UserActiveFunc func(ctx context.Context, userID uuid.UUID) (bool, error)

type Config struct {
	Secret     string
	Blacklist  helperAuth.Blacklist // optional
	UserActive UserActiveFunc       // optional
	SkipPaths  []string
}

// AuthJWT verifies the bearer token and stores user id, role and name in Locals.
func AuthJWT(cfg Config) fiber.Handler {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		raw, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		if cfg.Secret == "" {
			logger.Error("JWT secret is empty")
			return fiber.NewError(fiber.StatusInternalServerError, "missing jwt secret")
		}

		claims, err := helperAuth.ParseAccessToken(raw, cfg.Secret)
		if err != nil {
			logger.Debug("rejecting token", zap.Error(err))
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized - invalid or expired token")
		}
		userID, err := claims.UserID()
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized - invalid user id")
		}

		if cfg.Blacklist != nil {
			black, err := cfg.Blacklist.IsBlacklisted(c.UserContext(), raw)
			if err != nil {
				logger.Error("blacklist lookup failed", zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
			}
			if black {
				return fiber.NewError(fiber.StatusUnauthorized, "unauthorized - token revoked")
			}
		}

		if cfg.UserActive != nil {
			active, err := cfg.UserActive(c.UserContext(), userID)
			if err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "unauthorized - user not found")
			}
			if !active {
				return fiber.NewError(fiber.StatusForbidden, "account is deactivated")
			}
		}

		c.Locals(helperAuth.LocUserID, userID.String())
		c.Locals(helperAuth.LocUserRole, strings.ToLower(claims.Role))
		c.Locals(helperAuth.LocUserName, claims.Name)
		c.Locals(helperAuth.LocRawToken, raw)
		return c.Next()
	}
}
