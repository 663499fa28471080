package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "admissions_backend/internals/helpers"
)

func newTestOTPStore(t *testing.T) (*RedisOTPStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisOTPStore(client, time.Minute), mr
}

func TestRedisOTPStore_IssueVerify(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestOTPStore(t)
	enq := uuid.New()

	code, err := store.Issue(ctx, enq, "student")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.True(t, mr.Exists(otpKey(enq, "student")))

	ok, err := store.Verify(ctx, enq, "father", code)
	require.NoError(t, err)
	assert.False(t, ok, "code is bound to its target")

	ok, err = store.Verify(ctx, enq, "student", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Verify(ctx, enq, "student", code)
	require.NoError(t, err)
	assert.False(t, ok, "code is single use")
}

func TestRedisOTPStore_ConcurrentVerifyIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestOTPStore(t)
	enq := uuid.New()

	code, err := store.Issue(ctx, enq, "student")
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	var wins int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Verify(ctx, enq, "student", code)
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestRedisOTPStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestOTPStore(t)
	enq := uuid.New()

	code, err := store.Issue(ctx, enq, "father")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	ok, err := store.Verify(ctx, enq, "father", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisOTPStore_AttemptLimit(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestOTPStore(t)
	enq := uuid.New()

	code, err := store.Issue(ctx, enq, "student")
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < otpMaxAttempts; i++ {
		ok, err := store.Verify(ctx, enq, "student", wrong)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	_, err = store.Verify(ctx, enq, "student", wrong)
	require.ErrorIs(t, err, helper.ErrForbidden)
	assert.False(t, mr.Exists(otpKey(enq, "student")))

	ok, err := store.Verify(ctx, enq, "student", code)
	require.NoError(t, err)
	assert.False(t, ok, "locked code cannot be used")
}

func TestRedisOTPStore_NotConfigured(t *testing.T) {
	var store *RedisOTPStore
	_, err := store.Issue(context.Background(), uuid.New(), "student")
	assert.ErrorIs(t, err, helper.ErrUnavailable)
}
