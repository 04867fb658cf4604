package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerator_SixDigits(t *testing.T) {
	g := NewGenerator(0, nil)

	for i := 0; i < 50; i++ {
		code := g.Generate()
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestGenerator_SequenceSource(t *testing.T) {
	g := NewGenerator(6, NewSequenceSource(1, 2, 3, 4, 5, 6))

	assert.Equal(t, "123456", g.Generate())
	assert.Equal(t, "123456", g.Generate())
}

func TestBcryptCodec(t *testing.T) {
	c := NewBcryptCodec(bcrypt.MinCost)

	hash, err := c.Hash("042917")
	require.NoError(t, err)
	assert.NotEqual(t, "042917", hash)

	ok, err := c.Verify("042917", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Verify("042918", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Verify("042917", "not-a-hash")
	assert.Error(t, err)
}

func TestIsFresh_WindowIsInclusive(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsFresh(created, created.Add(2*time.Minute), 2*time.Minute))
	assert.False(t, IsFresh(created, created.Add(2*time.Minute+time.Millisecond), 2*time.Minute))
}
