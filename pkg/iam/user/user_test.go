package user

import (
	"testing"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/iam"
	"github.com/Abraxas-365/quizcraft/pkg/ptrx"
	"github.com/stretchr/testify/assert"
)

func TestNewUser_ProviderDecidesVerification(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	local := NewUser(" Alice@Example.com ", "Alice", "", iam.ProviderEmail, now)
	assert.Equal(t, "alice@example.com", local.Email)
	assert.True(t, local.IsProvisional())
	assert.Equal(t, "user", local.Role)

	social := NewUser("bob@example.com", "Bob", "", iam.ProviderGoogle, now)
	assert.False(t, social.IsProvisional())
}

func TestPatch_ClearVerifyCodeWins(t *testing.T) {
	u := &User{VerifyCodeHash: ptrx.String("h1")}

	Patch{VerifyCodeHash: ptrx.String("h2"), ClearVerifyCode: true, EmailVerified: ptrx.Bool(true)}.Apply(u)

	assert.Nil(t, u.VerifyCodeHash)
	assert.True(t, u.EmailVerified)
}

func TestToProfile_OmitsSecrets(t *testing.T) {
	u := &User{
		Email:          "a@example.com",
		Name:           "A",
		PasswordHash:   "hash",
		Salt:           "salt",
		VerifyCodeHash: ptrx.String("code"),
		Provider:       iam.ProviderEmail,
		Role:           "user",
	}

	p := u.ToProfile()

	assert.Equal(t, Profile{Email: "a@example.com", Name: "A", Role: "user"}, p)
}
