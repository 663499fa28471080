package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	helper "admissions_backend/internals/helpers"
)

const (
	otpDigits      = 6
	otpMaxAttempts = 5
)

var ErrOTPAttemptsExceeded = errors.Wrap(helper.ErrForbidden, "too many wrong codes, request a new one")

// OTPStore issues and checks fee-confirmation codes.
type OTPStore interface {
	Issue(ctx context.Context, enquiryID uuid.UUID, target string) (string, error)
	Verify(ctx context.Context, enquiryID uuid.UUID, target, code string) (bool, error)
}

type RedisOTPStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisOTPStore(client *redis.Client, ttl time.Duration) *RedisOTPStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisOTPStore{Client: client, TTL: ttl}
}

// compareAndDelete consumes KEYS[1] (and its attempt counter) only when it
// holds ARGV[1]; nil when the code is gone, 1 on match, 0 otherwise.
var compareAndDelete = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
	return nil
end
if stored == ARGV[1] then
	redis.call("DEL", KEYS[1], KEYS[2])
	return 1
end
return 0
`)

func otpKey(enquiryID uuid.UUID, target string) string {
	return fmt.Sprintf("fee-otp:%s:%s", enquiryID, target)
}

func otpAttemptsKey(enquiryID uuid.UUID, target string) string {
	return otpKey(enquiryID, target) + ":attempts"
}

func randomCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", errors.Wrap(err, "otp random")
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// Issue replaces any previous code for (enquiry, target) and resets attempts.
func (s *RedisOTPStore) Issue(ctx context.Context, enquiryID uuid.UUID, target string) (string, error) {
	if s == nil || s.Client == nil {
		return "", errors.Wrap(helper.ErrUnavailable, "otp store not configured")
	}
	code, err := randomCode()
	if err != nil {
		return "", err
	}
	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, otpKey(enquiryID, target), code, s.TTL)
	pipe.Del(ctx, otpAttemptsKey(enquiryID, target))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", errors.Wrap(err, "otp issue")
	}
	return code, nil
}

// Verify consumes the code on success. After otpMaxAttempts wrong tries the
// code is dropped and ErrOTPAttemptsExceeded returned.
func (s *RedisOTPStore) Verify(ctx context.Context, enquiryID uuid.UUID, target, code string) (bool, error) {
	if s == nil || s.Client == nil {
		return false, errors.Wrap(helper.ErrUnavailable, "otp store not configured")
	}
	key := otpKey(enquiryID, target)
	matched, err := compareAndDelete.Run(ctx, s.Client, []string{key, otpAttemptsKey(enquiryID, target)}, code).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "otp verify")
	}
	if matched == 1 {
		return true, nil
	}

	attempts, err := s.Client.Incr(ctx, otpAttemptsKey(enquiryID, target)).Result()
	if err != nil {
		return false, errors.Wrap(err, "otp attempts")
	}
	if attempts == 1 {
		_ = s.Client.Expire(ctx, otpAttemptsKey(enquiryID, target), s.TTL).Err()
	}
	if attempts >= otpMaxAttempts {
		_ = s.Client.Del(ctx, key, otpAttemptsKey(enquiryID, target)).Err()
		return false, ErrOTPAttemptsExceeded
	}
	return false, nil
}
