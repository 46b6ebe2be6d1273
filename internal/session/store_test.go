package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	raw, err := s.Create(ctx, Identity{HospitalID: "h-1", HospitalName: "Hospital1"})
	assert.NoError(t, err)
	assert.Len(t, raw, 64)

	id, err := s.Get(ctx, raw)
	assert.NoError(t, err)
	assert.Equal(t, "h-1", id.HospitalID)
	assert.Equal(t, "Hospital1", id.HospitalName)
}

func TestMemoryStoreUnknownID(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	_, err := s.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStoreDestroy(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	raw, err := s.Create(ctx, Identity{HospitalID: "h-1", HospitalName: "Hospital1"})
	assert.NoError(t, err)
	assert.NoError(t, s.Destroy(ctx, raw))

	_, err = s.Get(ctx, raw)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	raw, err := s.Create(ctx, Identity{HospitalID: "h-1", HospitalName: "Hospital1"})
	assert.NoError(t, err)

	time.Sleep(25 * time.Millisecond)
	_, err = s.Get(ctx, raw)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionIDsAreUnique(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		raw, err := s.Create(ctx, Identity{HospitalID: "h-1", HospitalName: "Hospital1"})
		assert.NoError(t, err)
		assert.False(t, seen[raw])
		seen[raw] = true
	}
}
