package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("APP_SECRET", "s3cret")
	t.Setenv("API_KEY", "key")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_x")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, 2*time.Minute, cfg.OTP.Window)
	assert.Equal(t, 6, cfg.OTP.Length)
	assert.Equal(t, MailDeliveryDirect, cfg.Mail.Delivery)
	assert.Equal(t, "mongo", cfg.Store.Driver)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OTP_WINDOW", "5m")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("JOBX_QUEUES", "mail, urgent")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.OTP.Window)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, []string{"mail", "urgent"}, cfg.Jobx.Queues)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("APP_SECRET", "")
	t.Setenv("API_KEY", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_SECRET")
}

func TestLoad_UnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := Load()
	assert.Error(t, err)
}
