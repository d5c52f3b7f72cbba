package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	resend := cfg.GetResend()
	assert.Empty(t, resend.APIKey)
	assert.Equal(t, "https://api.resend.com", resend.BaseURL)
	assert.Equal(t, 30*time.Second, resend.Timeout)

	mailer := cfg.GetMailer()
	assert.True(t, mailer.OverrideEnabled)
	assert.False(t, mailer.ForceFrom)
	assert.Empty(t, mailer.FromEmail)

	cache := cfg.GetCache()
	assert.Equal(t, "memory", cache.Type)
	assert.Equal(t, 90, cache.RetentionDays)

	assert.Equal(t, "127.0.0.1:2525", cfg.GetString("smtp.listen_address"))
	assert.Equal(t, "127.0.0.1:8080", cfg.GetString("http.listen_address"))
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("resend.api_key", "re_test_key")
	v.Set("resend.timeout", "5s")
	v.Set("mailer.force_from", true)
	v.Set("cache.type", "sqlite")
	cfg := NewFromViper(v)

	assert.Equal(t, "re_test_key", cfg.GetResend().APIKey)
	assert.Equal(t, 5*time.Second, cfg.GetResend().Timeout)
	assert.True(t, cfg.GetMailer().ForceFrom)
	assert.Equal(t, "sqlite", cfg.GetCache().Type)
}

func TestGetDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.cleanup_frequency", "1h")
	cfg := NewFromViper(v)

	frequency, err := cfg.GetDuration("cache.cleanup_frequency")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, frequency)

	v.Set("cache.cleanup_frequency", "not a duration")
	_, err = cfg.GetDuration("cache.cleanup_frequency")
	assert.Error(t, err)
}
