package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/features/users/auth/dto"
	"admissions_backend/internals/features/users/auth/service"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

const (
	cookieAccess  = "access_token"
	cookieRefresh = "refresh_token"
)

type AuthController struct {
	Svc *service.AuthService
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Svc: svc}
}

func clientMeta(c *fiber.Ctx) service.ClientMeta {
	return service.ClientMeta{UserAgent: c.Get(fiber.HeaderUserAgent), IP: c.IP()}
}

func setAuthCookies(c *fiber.Ctx, t *dto.TokenResponse) {
	c.Cookie(&fiber.Cookie{
		Name:     cookieAccess,
		Value:    t.AccessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  t.AccessExpiresAt,
	})
	c.Cookie(&fiber.Cookie{
		Name:     cookieRefresh,
		Value:    t.RefreshToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/api/auth",
		Expires:  t.RefreshExpiresAt,
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	for name, path := range map[string]string{cookieAccess: "/", cookieRefresh: "/api/auth"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: true,
			Secure:   true,
			SameSite: "None",
			Path:     path,
			Expires:  expired,
			MaxAge:   -1,
		})
	}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	out, err := ac.Svc.Login(c.UserContext(), req, clientMeta(c))
	if err != nil {
		return err
	}
	setAuthCookies(c, out)
	return helper.JsonOK(c, "login successful", out)
}

// POST /api/auth/google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	out, err := ac.Svc.LoginGoogle(c.UserContext(), req.IDToken, clientMeta(c))
	if err != nil {
		return err
	}
	setAuthCookies(c, out)
	return helper.JsonOK(c, "login successful", out)
}

// POST /api/auth/refresh
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	raw := req.RefreshToken
	if raw == "" {
		raw = c.Cookies(cookieRefresh)
	}
	out, err := ac.Svc.Refresh(c.UserContext(), raw, clientMeta(c))
	if err != nil {
		clearAuthCookies(c)
		return err
	}
	setAuthCookies(c, out)
	return helper.JsonOK(c, "token refreshed", out)
}

// POST /api/auth/logout is idempotent and works without a valid session.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	_ = c.BodyParser(&req)
	raw := req.RefreshToken
	if raw == "" {
		raw = c.Cookies(cookieRefresh)
	}
	if err := ac.Svc.Logout(c.UserContext(), helperAuth.GetRawAccessToken(c), raw); err != nil {
		return err
	}
	clearAuthCookies(c)
	return helper.JsonOK(c, "logout successful", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	uid, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	u, err := ac.Svc.Me(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "me", dto.FromUser(*u))
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	uid, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := ac.Svc.ChangePassword(c.UserContext(), uid, req); err != nil {
		return err
	}
	clearAuthCookies(c)
	return helper.JsonUpdated(c, "password changed, please sign in again", nil)
}
