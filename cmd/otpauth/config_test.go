package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/otpauth/internal/logging"
	"github.com/MrEthical07/otpauth/mail"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret-access-secret-0001")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret-refresh-secret-01")
	t.Setenv("MAIL_TRANSPORT", "log")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":6001", cfg.HTTPAddr)
	assert.Equal(t, storeRedis, cfg.StoreBackend)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "none", cfg.CookieSameSite)
	assert.Equal(t, int32(10), cfg.PostgresMaxConns)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.development())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	require.NoError(t, os.Unsetenv("ACCESS_TOKEN_SECRET"))
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret-refresh-secret-01")

	_, err := loadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_SECRET")
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"STORE_BACKEND": "etcd"}},
		{"unknown transport", map[string]string{"MAIL_TRANSPORT": "pigeon"}},
		{"smtp without host", map[string]string{"MAIL_TRANSPORT": "smtp"}},
		{"kafka without brokers", map[string]string{"MAIL_TRANSPORT": "kafka"}},
		{"bad samesite", map[string]string{"COOKIE_SAMESITE": "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigReadsDotenv(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KAFKA_TOPIC=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("KAFKA_TOPIC") })

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.KafkaTopic)
}

func TestLoadConfigMissingDotenvIsFine(t *testing.T) {
	setBaseEnv(t)

	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestEngineConfigMapsEnvironment(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	engineCfg := cfg.engineConfig()
	assert.Equal(t, []byte("access-secret-access-secret-0001"), engineCfg.JWT.AccessSecret)
	assert.Equal(t, 5*time.Minute, engineCfg.JWT.AccessTTL)
	assert.False(t, engineCfg.Metrics.Enabled)
	assert.True(t, engineCfg.Development)
	require.NoError(t, engineCfg.Validate())
}

func TestNewMailer(t *testing.T) {
	logger := logging.Discard()

	sender, closer, err := newMailer(serverConfig{MailTransport: mailLog}, logger)
	require.NoError(t, err)
	assert.IsType(t, &mail.LogSender{}, sender)
	assert.Nil(t, closer)

	sender, closer, err = newMailer(serverConfig{
		MailTransport: mailKafka,
		KafkaBrokers:  []string{"localhost:9092"},
		KafkaTopic:    "auth.notifications",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &mail.KafkaSender{}, sender)
	require.NotNil(t, closer)
	assert.NoError(t, closer.Close())

	_, _, err = newMailer(serverConfig{MailTransport: mailSMTP}, logger)
	assert.Error(t, err)
}

func TestRootCommandWiring(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("env-file"))
}
