package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/users/auth/dto"
	authModel "admissions_backend/internals/features/users/auth/model"
	authRepo "admissions_backend/internals/features/users/auth/repository"
	helper "admissions_backend/internals/helpers"
)

var userSort = map[string]string{
	"created_at": "user_created_at",
	"name":       "user_full_name",
	"email":      "user_email",
	"last_login": "user_last_login_at",
}

func (s *AuthService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*authModel.UserModel, error) {
	if err := ValidatePasswordStrength("user_password", req.Password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	m := req.ToModel(hash)
	if err := authRepo.CreateUser(s.DB.WithContext(ctx), m); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, errors.Wrap(helper.ErrConflict, "email already registered")
		}
		return nil, errors.Wrap(err, "create user")
	}
	return m, nil
}

func (s *AuthService) ListUsers(ctx context.Context, q dto.ListUserQuery, p helper.Params) ([]authModel.UserModel, int64, error) {
	order, err := p.SafeOrderClause(userSort, "created_at")
	if err != nil {
		return nil, 0, err
	}
	tx := s.DB.WithContext(ctx).Model(&authModel.UserModel{})
	if q.Role != "" {
		tx = tx.Where("user_role = ?", q.Role)
	}
	if q.IsActive != nil {
		tx = tx.Where("user_is_active = ?", *q.IsActive)
	}
	if term := strings.TrimSpace(q.Q); term != "" {
		like := "%" + term + "%"
		tx = tx.Where("user_full_name ILIKE ? OR user_email ILIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	var rows []authModel.UserModel
	if err := tx.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	return rows, total, nil
}

// CheckSelfEdit stops an admin from locking themselves out.
func CheckSelfEdit(actor, target uuid.UUID, req dto.UpdateUserRequest) error {
	if actor != target {
		return nil
	}
	if req.IsActive != nil && !*req.IsActive {
		return errors.Wrap(helper.ErrForbidden, "you cannot deactivate your own account")
	}
	if req.Role != nil && *req.Role != constants.RoleAdmin {
		return errors.Wrap(helper.ErrForbidden, "you cannot remove your own admin role")
	}
	return nil
}

// UpdateUser applies the changes; deactivation also ends all sessions.
func (s *AuthService) UpdateUser(ctx context.Context, actor, id uuid.UUID, req dto.UpdateUserRequest) (*authModel.UserModel, error) {
	if err := CheckSelfEdit(actor, id, req); err != nil {
		return nil, err
	}
	changes := req.Changes()
	if len(changes) == 0 {
		return s.Me(ctx, id)
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&authModel.UserModel{}).Where("user_id = ?", id).Updates(changes)
		if res.Error != nil {
			return errors.Wrap(res.Error, "update user")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(helper.ErrNotFound, "user not found")
		}
		if req.IsActive != nil && !*req.IsActive {
			return errors.Wrap(authRepo.RevokeAllForUser(tx, id, s.Now()), "revoke sessions")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Me(ctx, id)
}

func (s *AuthService) DeactivateUser(ctx context.Context, actor, id uuid.UUID) (*authModel.UserModel, error) {
	off := false
	return s.UpdateUser(ctx, actor, id, dto.UpdateUserRequest{IsActive: &off})
}
