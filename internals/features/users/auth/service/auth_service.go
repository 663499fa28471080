package service

import (
	"context"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"admissions_backend/internals/features/users/auth/dto"
	authModel "admissions_backend/internals/features/users/auth/model"
	authRepo "admissions_backend/internals/features/users/auth/repository"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
	"admissions_backend/internals/logger"
)

// GoogleIdentity is what a verified Google ID token tells us.
type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

type GoogleVerifier interface {
	Verify(idToken string) (*GoogleIdentity, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier checks signature and audience against Google's keys.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(idToken string) (*GoogleIdentity, error) {
	if g.clientID == "" {
		return nil, errors.Wrap(helper.ErrUnavailable, "google sign-in is not configured")
	}
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return nil, errors.Wrap(helper.ErrUnauthorized, "invalid google id token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, errors.Wrap(helper.ErrUnauthorized, "cannot decode google id token")
	}
	return &GoogleIdentity{Sub: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}

// ClientMeta is stored next to each refresh token.
type ClientMeta struct {
	UserAgent string
	IP        string
}

type AuthService struct {
	DB            *gorm.DB
	Blacklist     *helperAuth.DBBlacklist
	Secret        string
	RefreshSecret string
	Google        GoogleVerifier
	Now           func() time.Time
}

func New(db *gorm.DB, secret, refreshSecret, googleClientID string) *AuthService {
	return &AuthService{
		DB:            db,
		Blacklist:     helperAuth.NewDBBlacklist(db, secret),
		Secret:        secret,
		RefreshSecret: refreshSecret,
		Google:        NewGoogleVerifier(googleClientID),
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

var errBadCredentials = errors.Wrap(helper.ErrUnauthorized, "invalid email or password")

func strptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

/* ==========================
   LOGIN
========================== */

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest, meta ClientMeta) (*dto.TokenResponse, error) {
	db := s.DB.WithContext(ctx)
	user, err := authRepo.FindUserByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, errors.Wrap(err, "find user")
	}
	if !CheckPassword(user.UserPassword, req.Password) {
		return nil, errBadCredentials
	}
	if !user.UserIsActive {
		return nil, errors.Wrap(helper.ErrForbidden, "account is deactivated, contact the admin")
	}
	return s.issue(db, user, meta)
}

// LoginGoogle only signs in staff that already have an account. The first
// Google login links the Google subject to the account found by email.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string, meta ClientMeta) (*dto.TokenResponse, error) {
	if s.Google == nil {
		return nil, errors.Wrap(helper.ErrUnavailable, "google sign-in is not configured")
	}
	id, err := s.Google.Verify(idToken)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	user, err := authRepo.FindUserByGoogleID(db, id.Sub)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = authRepo.FindUserByEmail(db, id.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrUnauthorized, "no staff account for this google user")
		}
		if err == nil {
			if user.UserGoogleID != nil && *user.UserGoogleID != id.Sub {
				return nil, errors.Wrap(helper.ErrConflict, "account is linked to another google user")
			}
			if err := db.Model(user).Update("user_google_id", id.Sub).Error; err != nil {
				return nil, errors.Wrap(err, "link google id")
			}
			user.UserGoogleID = &id.Sub
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	if !user.UserIsActive {
		return nil, errors.Wrap(helper.ErrForbidden, "account is deactivated, contact the admin")
	}
	return s.issue(db, user, meta)
}

/* ==========================
   ISSUE TOKENS
========================== */

func (s *AuthService) issue(db *gorm.DB, user *authModel.UserModel, meta ClientMeta) (*dto.TokenResponse, error) {
	if s.Secret == "" || s.RefreshSecret == "" {
		return nil, errors.Wrap(helper.ErrUnavailable, "jwt secrets are not set")
	}
	now := s.Now()
	access, accessExp, err := helperAuth.IssueAccessToken(user.UserID, user.UserRole, user.UserFullName, s.Secret, now)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := helperAuth.IssueRefreshToken(user.UserID, s.RefreshSecret, now)
	if err != nil {
		return nil, err
	}
	if err := authRepo.CreateRefreshToken(db, &authModel.RefreshTokenModel{
		UserID:    user.UserID,
		TokenHash: helperAuth.HashRefreshToken(refresh, s.RefreshSecret),
		ExpiresAt: refreshExp,
		UserAgent: strptr(meta.UserAgent),
		IP:        strptr(meta.IP),
	}); err != nil {
		return nil, errors.Wrap(err, "store refresh token")
	}
	if err := authRepo.TouchLastLogin(db, user.UserID, now); err != nil {
		logger.Warn("touch last login failed", zap.String("user_id", user.UserID.String()), zap.Error(err))
	}
	user.UserLastLoginAt = &now

	return &dto.TokenResponse{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		User:             dto.FromUser(*user),
	}, nil
}

/* ==========================
   REFRESH (rotation)
========================== */

// Refresh revokes the presented token and issues a new pair. A token that was
// already revoked is treated as stolen and ends every session of its owner.
func (s *AuthService) Refresh(ctx context.Context, raw string, meta ClientMeta) (*dto.TokenResponse, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.Wrap(helper.ErrUnauthorized, "refresh token is missing")
	}
	userID, err := helperAuth.ParseRefreshToken(raw, s.RefreshSecret)
	if err != nil {
		return nil, errors.Wrap(helper.ErrUnauthorized, "invalid refresh token")
	}
	hash := helperAuth.HashRefreshToken(raw, s.RefreshSecret)
	now := s.Now()

	rt, err := authRepo.FindActiveRefreshToken(s.DB.WithContext(ctx), hash, now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if rerr := authRepo.RevokeAllForUser(s.DB.WithContext(ctx), userID, now); rerr != nil {
			return nil, errors.Wrap(rerr, "revoke sessions")
		}
		logger.Warn("refresh token reuse", zap.String("user_id", userID.String()), zap.String("ip", meta.IP))
		return nil, errors.Wrap(helper.ErrUnauthorized, "refresh token is no longer valid")
	}
	if err != nil {
		return nil, errors.Wrap(err, "find refresh token")
	}
	if rt.UserID != userID {
		return nil, errors.Wrap(helper.ErrUnauthorized, "refresh token does not match its owner")
	}

	var out *dto.TokenResponse
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := authRepo.RevokeRefreshToken(tx, rt.ID, now)
		if err != nil {
			return errors.Wrap(err, "revoke refresh token")
		}
		if !ok {
			// lost a race with a concurrent refresh
			return errors.Wrap(helper.ErrUnauthorized, "refresh token is no longer valid")
		}
		user, err := authRepo.FindUserByID(tx, userID)
		if err != nil {
			return errors.Wrap(helper.ErrUnauthorized, "user not found")
		}
		if !user.UserIsActive {
			return errors.Wrap(helper.ErrForbidden, "account is deactivated, contact the admin")
		}
		out, err = s.issue(tx, user, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ==========================
   LOGOUT
========================== */

// Logout blacklists the access token until it expires and revokes the
// refresh token. Missing or broken tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, rawAccess, rawRefresh string) error {
	if rawAccess != "" && s.Blacklist != nil {
		if claims, err := helperAuth.ParseAccessToken(rawAccess, s.Secret); err == nil && claims.ExpiresAt != nil {
			if err := s.Blacklist.Add(ctx, rawAccess, claims.ExpiresAt.Time); err != nil {
				return errors.Wrap(err, "blacklist access token")
			}
		}
	}
	if rawRefresh != "" {
		hash := helperAuth.HashRefreshToken(rawRefresh, s.RefreshSecret)
		if err := authRepo.RevokeRefreshTokenByHash(s.DB.WithContext(ctx), hash, s.Now()); err != nil {
			return errors.Wrap(err, "revoke refresh token")
		}
	}
	return nil
}

/* ==========================
   ME / PASSWORD
========================== */

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*authModel.UserModel, error) {
	u, err := authRepo.FindUserByID(s.DB.WithContext(ctx), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(helper.ErrNotFound, "user not found")
	}
	return u, errors.Wrap(err, "find user")
}

// ChangePassword ends all refresh sessions of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	if err := ValidatePasswordStrength("new_password", req.NewPassword); err != nil {
		return err
	}
	if req.NewPassword == req.CurrentPassword {
		return helper.NewValidationError(map[string][]string{"new_password": {"must differ from the current password"}})
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(user.UserPassword, req.CurrentPassword) {
		return errors.Wrap(helper.ErrUnauthorized, "current password is incorrect")
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := authRepo.UpdateUserPassword(tx, userID, hash); err != nil {
			return errors.Wrap(err, "update password")
		}
		return errors.Wrap(authRepo.RevokeAllForUser(tx, userID, s.Now()), "revoke sessions")
	})
}

/* ==========================
   CLEANUP
========================== */

// PurgeTokens removes expired blacklist rows and dead refresh tokens.
func PurgeTokens(ctx context.Context, db *gorm.DB, now time.Time) (blacklisted, refresh int64, err error) {
	blacklisted, err = helperAuth.PurgeExpired(ctx, db)
	if err != nil {
		return 0, 0, errors.Wrap(err, "purge blacklist")
	}
	refresh, err = authRepo.PurgeRefreshTokens(ctx, db, now)
	if err != nil {
		return blacklisted, 0, errors.Wrap(err, "purge refresh tokens")
	}
	return blacklisted, refresh, nil
}
