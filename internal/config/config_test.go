package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 6, cfg.OTP.CodeLength)
	assert.Equal(t, 600, cfg.OTP.TTLSec)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
	assert.Equal(t, "smsnotify.otp_code", cfg.OTP.Template)
	assert.Equal(t, 10*time.Second, cfg.SMS.Timeout())
	assert.Equal(t, 30, cfg.Settings.PollIntervalSec)
	assert.False(t, cfg.Supabase.Enabled())
	assert.Empty(t, cfg.Auth.APIKeys)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SMSNOTIFY_SERVER_PORT", "9090")
	t.Setenv("SMSNOTIFY_OTP_TTL_SEC", "120")
	t.Setenv("SMSNOTIFY_AUTH_API_KEYS", "key-a, key-b,")
	t.Setenv("SMSNOTIFY_OTP_REQUIRED_SUBJECTS", "+15550001111")
	t.Setenv("SMSNOTIFY_SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SMSNOTIFY_SUPABASE_SERVICE_KEY", "service-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 120, cfg.OTP.TTLSec)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.Auth.APIKeys)
	assert.Equal(t, []string{"+15550001111"}, cfg.OTP.RequiredSubjects)
	assert.True(t, cfg.Supabase.Enabled())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
sms:
  timeout_sec: 5
  settings:
    default_channel: twilio
    twilio.enabled: "true"
templates:
  smsnotify.new_order: "Order {order_id} is in"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.SMS.Timeout())
	assert.Equal(t, "twilio", cfg.SMS.Settings["default_channel"])
	assert.Equal(t, "Order {order_id} is in", cfg.Templates["smsnotify.new_order"])
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,,b "))
}

func TestFlatten(t *testing.T) {
	got := flatten("", map[string]any{
		"default_channel": "twilio",
		"twilio": map[string]any{
			"enabled":     true,
			"account_sid": "AC1",
		},
	})
	assert.Equal(t, map[string]string{
		"default_channel":    "twilio",
		"twilio.enabled":     "true",
		"twilio.account_sid": "AC1",
	}, got)
}
