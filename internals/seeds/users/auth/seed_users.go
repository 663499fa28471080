package user

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authModel "admissions_backend/internals/features/users/auth/model"
	authService "admissions_backend/internals/features/users/auth/service"
	"admissions_backend/internals/logger"
)

type UserSeed struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func SeedUsersFromJSON(db *gorm.DB, filePath string) error {
	logger.Info("seeding users", zap.String("file", filePath))

	file, err := os.ReadFile(filePath)
	if err != nil {
		return errors.Wrap(err, "read users seed")
	}
	var inputs []UserSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return errors.Wrap(err, "decode users seed")
	}
	return SeedUsers(db, inputs)
}

// SeedUsers inserts accounts whose email is not taken yet.
func SeedUsers(db *gorm.DB, inputs []UserSeed) error {
	for _, data := range inputs {
		email := strings.ToLower(strings.TrimSpace(data.Email))
		var n int64
		if err := db.Model(&authModel.UserModel{}).Where("LOWER(user_email) = ?", email).Count(&n).Error; err != nil {
			return errors.Wrap(err, "check user")
		}
		if n > 0 {
			logger.Debug("user exists, skipped", zap.String("email", email))
			continue
		}
		hash, err := authService.HashPassword(data.Password)
		if err != nil {
			return err
		}
		if err := db.Create(&authModel.UserModel{
			UserFullName: data.FullName,
			UserEmail:    email,
			UserPassword: hash,
			UserRole:     data.Role,
			UserIsActive: true,
		}).Error; err != nil {
			return errors.Wrapf(err, "seed user %s", email)
		}
		logger.Info("user seeded", zap.String("email", email), zap.String("role", data.Role))
	}
	return nil
}
