package service

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	helper "admissions_backend/internals/helpers"
)

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength wants at least one letter and one digit on top of
// the length rule enforced by the request tags.
func ValidatePasswordStrength(field, password string) error {
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	ve := &helper.ValidationError{}
	if len(password) < 8 {
		ve.Add(field, "must be at least 8 characters")
	}
	if !letter || !digit {
		ve.Add(field, "must contain a letter and a digit")
	}
	if strings.TrimSpace(password) != password {
		ve.Add(field, "must not start or end with spaces")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}
