package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internals/features/users/auth/dto"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

type fakeGoogle struct {
	err error
}

func (f fakeGoogle) Verify(string) (*GoogleIdentity, error) {
	return nil, f.err
}

func newTestService() *AuthService {
	return &AuthService{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Now:           func() time.Time { return time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass1"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret-pass"))
}

func TestValidatePasswordStrength(t *testing.T) {
	assert.NoError(t, ValidatePasswordStrength("p", "admission2024"))

	var ve *helper.ValidationError
	require.True(t, errors.As(ValidatePasswordStrength("p", "short1"), &ve))
	assert.Contains(t, ve.Fields["p"], "must be at least 8 characters")

	require.True(t, errors.As(ValidatePasswordStrength("p", "onlyletters"), &ve))
	assert.Contains(t, ve.Fields["p"], "must contain a letter and a digit")

	require.True(t, errors.As(ValidatePasswordStrength("p", " padded123 "), &ve))
	assert.Contains(t, ve.Fields["p"], "must not start or end with spaces")
}

func TestLoginGoogleWithoutVerifier(t *testing.T) {
	s := newTestService()
	_, err := s.LoginGoogle(context.Background(), "tok", ClientMeta{})
	assert.True(t, errors.Is(err, helper.ErrUnavailable))
}

func TestLoginGoogleRejectsBadToken(t *testing.T) {
	s := newTestService()
	s.Google = fakeGoogle{err: errors.Wrap(helper.ErrUnauthorized, "invalid google id token")}
	_, err := s.LoginGoogle(context.Background(), "tok", ClientMeta{})
	assert.True(t, errors.Is(err, helper.ErrUnauthorized))
}

func TestGoogleVerifierNotConfigured(t *testing.T) {
	_, err := NewGoogleVerifier("").Verify("tok")
	assert.True(t, errors.Is(err, helper.ErrUnavailable))
}

func TestRefreshRejectsMissingAndForeignTokens(t *testing.T) {
	s := newTestService()

	_, err := s.Refresh(context.Background(), "  ", ClientMeta{})
	assert.True(t, errors.Is(err, helper.ErrUnauthorized))

	_, err = s.Refresh(context.Background(), "garbage", ClientMeta{})
	assert.True(t, errors.Is(err, helper.ErrUnauthorized))

	// signed with the access secret instead of the refresh secret
	tok, _, err := helperAuth.IssueRefreshToken(uuid.New(), "access-secret", time.Now())
	require.NoError(t, err)
	_, err = s.Refresh(context.Background(), tok, ClientMeta{})
	assert.True(t, errors.Is(err, helper.ErrUnauthorized))
}

func TestLogoutWithoutTokensIsNoop(t *testing.T) {
	s := newTestService()
	assert.NoError(t, s.Logout(context.Background(), "", ""))
}

func TestChangePasswordValidatesFirst(t *testing.T) {
	s := newTestService()
	uid := uuid.New()

	var ve *helper.ValidationError
	err := s.ChangePassword(context.Background(), uid, dto.ChangePasswordRequest{
		CurrentPassword: "oldpass123", NewPassword: "weak",
	})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "new_password")

	err = s.ChangePassword(context.Background(), uid, dto.ChangePasswordRequest{
		CurrentPassword: "samepass123", NewPassword: "samepass123",
	})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields["new_password"], "must differ from the current password")
}

func TestCheckSelfEdit(t *testing.T) {
	me, other := uuid.New(), uuid.New()
	off := false
	role := "counsellor"
	admin := "admin"
	name := "New Name"

	assert.NoError(t, CheckSelfEdit(me, other, dto.UpdateUserRequest{IsActive: &off, Role: &role}))
	assert.NoError(t, CheckSelfEdit(me, me, dto.UpdateUserRequest{FullName: &name, Role: &admin}))
	assert.True(t, errors.Is(CheckSelfEdit(me, me, dto.UpdateUserRequest{IsActive: &off}), helper.ErrForbidden))
	assert.True(t, errors.Is(CheckSelfEdit(me, me, dto.UpdateUserRequest{Role: &role}), helper.ErrForbidden))
}

func TestCreateUserRejectsWeakPassword(t *testing.T) {
	s := newTestService()
	_, err := s.CreateUser(context.Background(), dto.CreateUserRequest{
		FullName: "Desk", Email: "desk@example.com", Password: "password", Role: "counsellor",
	})
	var ve *helper.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "user_password")
}
