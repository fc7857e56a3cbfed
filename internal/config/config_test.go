package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NOTIFY_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "GEMA Notify", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "GEMA", cfg.SMSFrom)
	require.Equal(t, 8, cfg.DispatchWorkers)
	require.False(t, cfg.EmailConfigured())
	require.False(t, cfg.SMSConfigured())
}

func TestLoadSMSGateway(t *testing.T) {
	t.Setenv("NOTIFY_JWT_SECRET", "secret")
	t.Setenv("NOTIFY_SMS_GATEWAY_URL", "https://sms.test/send")
	t.Setenv("NOTIFY_SMS_GATEWAY_KEY", "token")
	t.Setenv("NOTIFY_SMS_FROM", "NOTIFY")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.SMSConfigured())
	require.Equal(t, "https://sms.test/send", cfg.SMSGatewayURL)
	require.Equal(t, "NOTIFY", cfg.SMSFrom)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("NOTIFY_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}
