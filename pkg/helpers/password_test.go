package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "Abcdef1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcdef1!", hash)

	ok, err := h.Compare(ctx, "Abcdef1!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(ctx, "Abcdef1?", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasherCompareMalformedHash(t *testing.T) {
	ok, err := NewBcryptHasher(bcrypt.MinCost).Compare(context.Background(), "x", "not-a-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
	assert.Equal(t, 12, NewBcryptHasher(12).Cost)
}
