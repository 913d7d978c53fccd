package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreVerify(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "a@b.c", "123456", 5*time.Minute))

	ok, err := s.Verify(ctx, "a@b.c", "12345")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrBadCode)

	// A wrong code of the right shape leaves the entry for a retry.
	ok, err = s.Verify(ctx, "a@b.c", "000000")
	assert.False(t, ok)
	assert.NoError(t, err)

	ok, err = s.Verify(ctx, "a@b.c", "123456")
	assert.True(t, ok)
	assert.NoError(t, err)

	// The match consumed the entry.
	ok, err = s.Verify(ctx, "a@b.c", "123456")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestMemoryStoreNoEntry(t *testing.T) {
	s := NewMemoryStore()
	ok, err := s.Verify(context.Background(), "nobody@b.c", "123456")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestMemoryStoreExpiry(t *testing.T) {
	current := time.Now()
	s := NewMemoryStore()
	s.now = func() time.Time { return current }
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "a@b.c", "123456", 5*time.Minute))

	current = current.Add(5*time.Minute + time.Second)
	ok, err := s.Verify(ctx, "a@b.c", "123456")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrExpired)

	// Expiry purges: the correct code no longer exists.
	ok, err = s.Verify(ctx, "a@b.c", "123456")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestMemoryStorePutReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "a@b.c", "111111", 5*time.Minute))
	require.NoError(t, s.Put(ctx, "a@b.c", "222222", 5*time.Minute))

	ok, err := s.Verify(ctx, "a@b.c", "111111")
	assert.False(t, ok)
	assert.NoError(t, err)

	ok, err = s.Verify(ctx, "a@b.c", "222222")
	assert.True(t, ok)
	assert.NoError(t, err)
}
