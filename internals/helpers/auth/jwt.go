package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	AccessTTL  = 12 * time.Hour
	RefreshTTL = 7 * 24 * time.Hour

	// clock skew tolerated when checking exp
	leeway = 30 * time.Second
)

// AccessClaims are carried by staff access tokens.
type AccessClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func (c AccessClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// IssueAccessToken signs an HS256 access token for a staff user.
func IssueAccessToken(userID uuid.UUID, role, name, secret string, now time.Time) (string, time.Time, error) {
	exp := now.Add(AccessTTL)
	claims := AccessClaims{
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign access token")
	}
	return tok, exp, nil
}

// IssueRefreshToken signs the long lived token; only its hash is persisted.
func IssueRefreshToken(userID uuid.UUID, secret string, now time.Time) (string, time.Time, error) {
	exp := now.Add(RefreshTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign refresh token")
	}
	return tok, exp, nil
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}

// ParseAccessToken verifies signature and expiry (with leeway).
func ParseAccessToken(raw, secret string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(raw, claims, keyFunc(secret)); err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}
	if err := checkExpiry(claims.ExpiresAt, time.Now()); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies a refresh token and returns its subject.
func ParseRefreshToken(raw, secret string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(raw, claims, keyFunc(secret)); err != nil {
		return uuid.Nil, errors.Wrap(err, "parse refresh token")
	}
	if err := checkExpiry(claims.ExpiresAt, time.Now()); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}

func checkExpiry(exp *jwt.NumericDate, now time.Time) error {
	if exp == nil {
		return errors.New("token has no exp")
	}
	if now.After(exp.Time.Add(leeway)) {
		return errors.Errorf("token expired at %v", exp.Time.UTC())
	}
	return nil
}

// HashRefreshToken is the value stored in refresh_tokens.token_hash.
func HashRefreshToken(raw, secret string) []byte {
	return []byte(hmacHex(raw, secret))
}
