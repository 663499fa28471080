package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"admissions_backend/internals/features/users/auth/model"
)

/* ===================== AUTH ===================== */

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// RefreshRequest is optional in the body; the refresh_token cookie wins when both are missing.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type TokenResponse struct {
	AccessToken      string       `json:"access_token"`
	AccessExpiresAt  time.Time    `json:"access_expires_at"`
	RefreshToken     string       `json:"refresh_token"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
	User             UserResponse `json:"user"`
}

/* ===================== USERS (admin) ===================== */

type CreateUserRequest struct {
	FullName string  `json:"user_full_name" validate:"required,notblank,max=120"`
	Email    string  `json:"user_email" validate:"required,email,max=160"`
	Password string  `json:"user_password" validate:"required,min=8,max=72"`
	Role     string  `json:"user_role" validate:"required,oneof=admin counsellor telecaller accountant registrar"`
	Phone    *string `json:"user_phone" validate:"omitempty,mobile"`
}

func (r CreateUserRequest) ToModel(hash string) *model.UserModel {
	return &model.UserModel{
		UserFullName: strings.TrimSpace(r.FullName),
		UserEmail:    strings.ToLower(strings.TrimSpace(r.Email)),
		UserPassword: hash,
		UserRole:     r.Role,
		UserPhone:    r.Phone,
		UserIsActive: true,
	}
}

type UpdateUserRequest struct {
	FullName *string `json:"user_full_name" validate:"omitempty,notblank,max=120"`
	Role     *string `json:"user_role" validate:"omitempty,oneof=admin counsellor telecaller accountant registrar"`
	Phone    *string `json:"user_phone" validate:"omitempty,mobile"`
	IsActive *bool   `json:"user_is_active"`
}

// Changes returns only the columns present in the request.
func (r UpdateUserRequest) Changes() map[string]any {
	m := map[string]any{}
	if r.FullName != nil {
		m["user_full_name"] = strings.TrimSpace(*r.FullName)
	}
	if r.Role != nil {
		m["user_role"] = *r.Role
	}
	if r.Phone != nil {
		if p := strings.TrimSpace(*r.Phone); p == "" {
			m["user_phone"] = nil
		} else {
			m["user_phone"] = p
		}
	}
	if r.IsActive != nil {
		m["user_is_active"] = *r.IsActive
	}
	return m
}

type ListUserQuery struct {
	Q        string `query:"q"`
	Role     string `query:"role" validate:"omitempty,oneof=admin counsellor telecaller accountant registrar"`
	IsActive *bool  `query:"is_active"`
}

type UserResponse struct {
	UserID          uuid.UUID  `json:"user_id"`
	UserFullName    string     `json:"user_full_name"`
	UserEmail       string     `json:"user_email"`
	UserRole        string     `json:"user_role"`
	UserPhone       *string    `json:"user_phone,omitempty"`
	UserIsActive    bool       `json:"user_is_active"`
	UserHasGoogle   bool       `json:"user_has_google"`
	UserLastLoginAt *time.Time `json:"user_last_login_at,omitempty"`
	UserCreatedAt   time.Time  `json:"user_created_at"`
}

func FromUser(u model.UserModel) UserResponse {
	return UserResponse{
		UserID:          u.UserID,
		UserFullName:    u.UserFullName,
		UserEmail:       u.UserEmail,
		UserRole:        u.UserRole,
		UserPhone:       u.UserPhone,
		UserIsActive:    u.UserIsActive,
		UserHasGoogle:   u.UserGoogleID != nil && *u.UserGoogleID != "",
		UserLastLoginAt: u.UserLastLoginAt,
		UserCreatedAt:   u.UserCreatedAt,
	}
}

func FromUsers(rows []model.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(rows))
	for _, u := range rows {
		out = append(out, FromUser(u))
	}
	return out
}
