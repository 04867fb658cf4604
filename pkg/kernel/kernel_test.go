package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_Advance(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	c.Advance(90 * time.Second)

	assert.Equal(t, start.Add(90*time.Second), c.Now())
}

func TestAuthContext_Roles(t *testing.T) {
	var nilCtx *AuthContext
	assert.False(t, nilCtx.IsValid())
	assert.False(t, nilCtx.IsAdmin())

	ac := &AuthContext{Email: "a@example.com", Role: RoleAdmin}
	assert.True(t, ac.IsValid())
	assert.True(t, ac.IsAdmin())
}
