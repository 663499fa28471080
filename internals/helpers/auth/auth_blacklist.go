package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Access tokens are stored as HMAC-SHA256 hex so the table never holds a usable JWT.
func hmacHex(msg, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

// Blacklist is what AuthJWT needs to reject logged-out tokens.
type Blacklist interface {
	IsBlacklisted(ctx context.Context, rawAccessToken string) (bool, error)
}

type DBBlacklist struct {
	DB     *gorm.DB
	Secret string
}

func NewDBBlacklist(db *gorm.DB, secret string) *DBBlacklist {
	return &DBBlacklist{DB: db, Secret: secret}
}

// Add blacklists rawAccessToken until expiresAt.
func (b *DBBlacklist) Add(ctx context.Context, rawAccessToken string, expiresAt time.Time) error {
	if strings.TrimSpace(rawAccessToken) == "" {
		return nil
	}
	return b.DB.WithContext(ctx).Exec(`
		INSERT INTO token_blacklist (token, expired_at)
		VALUES (?, ?)
		ON CONFLICT (token) DO UPDATE
		SET expired_at = EXCLUDED.expired_at,
		    deleted_at = NULL
	`, hmacHex(rawAccessToken, b.Secret), expiresAt).Error
}

func (b *DBBlacklist) IsBlacklisted(ctx context.Context, rawAccessToken string) (bool, error) {
	if strings.TrimSpace(rawAccessToken) == "" {
		return false, nil
	}
	var exists bool
	err := b.DB.WithContext(ctx).Raw(`
		SELECT EXISTS (
		  SELECT 1
		  FROM token_blacklist
		  WHERE token = ?
		    AND deleted_at IS NULL
		    AND expired_at > NOW()
		)
	`, hmacHex(rawAccessToken, b.Secret)).Scan(&exists).Error
	return exists, err
}

// PurgeExpired hard-deletes rows past their expiry and returns how many went.
func PurgeExpired(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM token_blacklist WHERE expired_at <= NOW()`)
	return res.RowsAffected, res.Error
}
