package authinfra

import (
	"bytes"
	"context"
	"testing"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/iam/auth"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2PasswordService_RoundTrip(t *testing.T) {
	svc := NewArgon2PasswordService(1, 8*1024, 1)

	hash, salt, err := svc.Hash("correct horse")
	require.NoError(t, err)

	ok, err := svc.Verify("correct horse", hash, salt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("correct hors", hash, salt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2PasswordService_FreshSaltPerCall(t *testing.T) {
	svc := NewArgon2PasswordService(1, 8*1024, 1)

	h1, s1, err := svc.Hash("same")
	require.NoError(t, err)
	h2, s2, err := svc.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestArgon2PasswordService_RejectsMalformedHash(t *testing.T) {
	svc := NewArgon2PasswordService(1, 8*1024, 1)

	_, err := svc.Verify("x", "plain-text", "c2FsdA")
	assert.Error(t, err)
}

func TestArgon2PasswordService_RejectsZeroCostParameters(t *testing.T) {
	svc := NewArgon2PasswordService(1, 8*1024, 1)
	_, salt, err := svc.Hash("pw")
	require.NoError(t, err)

	cases := map[string]string{
		"zero rounds":  "$argon2id$v=19$m=8192,t=0,p=1$c29tZWtleQ",
		"zero lanes":   "$argon2id$v=19$m=8192,t=1,p=0$c29tZWtleQ",
		"empty digest": "$argon2id$v=19$m=8192,t=1,p=1$",
	}
	for name, hash := range cases {
		t.Run(name, func(t *testing.T) {
			var ok bool
			require.NotPanics(t, func() { ok, err = svc.Verify("pw", hash, salt) })
			assert.False(t, ok)
			assert.True(t, errx.IsCode(err, auth.CodeHashingFailed))
		})
	}
}

func TestLogxAuditService_LogsRejectionReason(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := logx.DefaultConfig()
	cfg.Format = logx.FormatJSON
	cfg.Output = buf
	svc := NewLogxAuditService(logx.NewLogger(cfg))

	svc.LogSignInAttempt(context.Background(), "a@example.com", false, "wrong_password")

	assert.Contains(t, buf.String(), `"reason":"wrong_password"`)
	assert.Contains(t, buf.String(), `"audit_event":"sign_in_attempt"`)
}
