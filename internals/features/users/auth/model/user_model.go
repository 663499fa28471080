package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is a staff account. Applicants never log in.
type UserModel struct {
	UserID          uuid.UUID  `json:"user_id" gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserFullName    string     `json:"user_full_name" gorm:"column:user_full_name;type:varchar(120);not null"`
	UserEmail       string     `json:"user_email" gorm:"column:user_email;type:varchar(160);not null"`
	UserPassword    string     `json:"-" gorm:"column:user_password;type:text;not null"`
	UserRole        string     `json:"user_role" gorm:"column:user_role;type:varchar(20);not null"`
	UserPhone       *string    `json:"user_phone,omitempty" gorm:"column:user_phone;type:varchar(20)"`
	UserGoogleID    *string    `json:"-" gorm:"column:user_google_id;type:varchar(64)"`
	UserIsActive    bool       `json:"user_is_active" gorm:"column:user_is_active;not null;default:true"`
	UserLastLoginAt *time.Time `json:"user_last_login_at,omitempty" gorm:"column:user_last_login_at;type:timestamptz"`

	UserCreatedAt time.Time      `json:"user_created_at" gorm:"column:user_created_at;type:timestamptz;not null;autoCreateTime"`
	UserUpdatedAt time.Time      `json:"user_updated_at" gorm:"column:user_updated_at;type:timestamptz;not null;autoUpdateTime"`
	UserDeletedAt gorm.DeletedAt `json:"-" gorm:"column:user_deleted_at;type:timestamptz;index"`
}

func (UserModel) TableName() string { return "users" }
