package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("NOTIFICATION_RECIPIENT", "ops@example.com")
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.Equal(t, "/uploads", cfg.Uploads.URLPrefix)
	assert.Equal(t, "2024-07", cfg.Shopify.APIVersion)
	assert.Equal(t, 10*time.Second, cfg.Shopify.Timeout)
	assert.Equal(t, "ops@example.com", cfg.Notification.Recipient)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("SMTP_PASS", "app-password")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/orders?parseTime=True")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mailer@example.com", cfg.SMTP.User)
	assert.Equal(t, "app-password", cfg.SMTP.Pass)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "u:p@tcp(db:3306)/orders?parseTime=True", cfg.MySQL.GetDSN())
	assert.Equal(t, "key", cfg.Shopify.APIKey)
	assert.Equal(t, "secret", cfg.Shopify.APISecret)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "3000", cfg.Server.Port)
}

func TestLoad_RedisCanStayDisabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_MissingRecipient(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NOTIFICATION_RECIPIENT", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notification.recipient")
}

func TestLoad_MissingShopifyCredentials(t *testing.T) {
	tests := []struct {
		name, key, secret string
	}{
		{"no key", "", "secret"},
		{"no secret", "key", ""},
		{"neither", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("SHOPIFY_API_KEY", tt.key)
			t.Setenv("SHOPIFY_API_SECRET", tt.secret)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "shopify.api_key and shopify.api_secret are required")
		})
	}
}

func TestMySQLConfig_GetDSN(t *testing.T) {
	c := MySQLConfig{User: "app", Password: "secret", Host: "db", Port: "3306", Database: "orders"}
	assert.Equal(t, "app:secret@tcp(db:3306)/orders?charset=utf8mb4&parseTime=True&loc=Local", c.GetDSN())
}
