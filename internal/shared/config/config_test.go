package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFiles_Defaults(t *testing.T) {
	cfg, err := LoadFiles(nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "https://t.me", cfg.TelegramBaseURL)
	assert.Equal(t, 1, cfg.DefaultPages)
	assert.Equal(t, 10, cfg.MaxPages)
	assert.Equal(t, domain.PaginationModePrevLink, cfg.PaginationMode)
	assert.Equal(t, domain.AppEnvProduction, cfg.AppEnv)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.False(t, cfg.BotEnabled())
	assert.True(t, cfg.IsAllowed(42))
}

func TestLoadFiles_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
http_port: "9000"
pagination_mode: load_more
strict_extraction: true
allowed_users: [1, 2]
app_env: development
`)

	cfg, err := LoadFiles([]string{path})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, domain.PaginationModeLoadMore, cfg.PaginationMode)
	assert.True(t, cfg.StrictExtraction)
	assert.Equal(t, []int64{1, 2}, cfg.AllowedUsers)
	assert.Equal(t, domain.AppEnvDevelopment, cfg.AppEnv)
	assert.True(t, cfg.IsAllowed(2))
	assert.False(t, cfg.IsAllowed(3))
	assert.NoError(t, cfg.Authorize(1))
	assert.ErrorIs(t, cfg.Authorize(3), errors.ErrUnauthorized)
}

func TestLoadFiles_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"http_port": "9000", "max_pages": 5}`)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("ALLOWED_USERS", "7, 8,oops")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := LoadFiles([]string{path})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.HTTPPort)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Equal(t, []int64{7, 8}, cfg.AllowedUsers)
	assert.True(t, cfg.BotEnabled())
}

func TestLoadFiles_InvalidPaginationMode(t *testing.T) {
	t.Setenv("PAGINATION_MODE", "infinite_scroll")

	_, err := LoadFiles(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPaginationMode)
}

func TestLoadFiles_InvalidPages(t *testing.T) {
	t.Setenv("DEFAULT_PAGES", "20")

	_, err := LoadFiles(nil)
	assert.ErrorIs(t, err, errors.ErrInvalidPages)
}

func TestLoadFiles_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "config.ini", "http_port=1")

	_, err := LoadFiles([]string{path})
	assert.Error(t, err)
}

func TestParseAllowedUsers(t *testing.T) {
	assert.Equal(t, []int64{}, ParseAllowedUsers(""))
	assert.Equal(t, []int64{1, 2, 3}, ParseAllowedUsers("1, 2,,3"))
}
