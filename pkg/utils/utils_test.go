package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("senha123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, IsHashed(h))
	assert.True(t, CheckPassword("senha123", h))
	assert.False(t, CheckPassword("wrong", h))
	assert.False(t, IsHashed("senha123"))
}

func TestIDGen_Monotonic(t *testing.T) {
	fixed := time.UnixMilli(1_000)
	g := NewIDGen(func() time.Time { return fixed })

	assert.Equal(t, int64(1_000), g.Next())
	assert.Equal(t, int64(1_001), g.Next())

	g.Observe(5_000)
	assert.Equal(t, int64(5_001), g.Next())

	g.Observe(10) // lower ids never move the sequence back
	assert.Equal(t, int64(5_002), g.Next())
}
