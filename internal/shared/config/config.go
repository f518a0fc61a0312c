package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	HTTPPort         string                `koanf:"http_port"`
	PublicURL        string                `koanf:"public_url"`
	TelegramBaseURL  string                `koanf:"telegram_base_url"`
	TelegramBotToken string                `koanf:"telegram_bot_token"`
	TelegramAPIURL   string                `koanf:"telegram_api_url"`
	AllowedUsers     []int64               `koanf:"-"`
	RequestTimeout   int                   `koanf:"request_timeout"`
	UserAgent        string                `koanf:"user_agent"`
	DefaultPages     int                   `koanf:"default_pages"`
	MaxPages         int                   `koanf:"max_pages"`
	PaginationMode   domain.PaginationMode `koanf:"pagination_mode"`
	StrictExtraction bool                  `koanf:"strict_extraction"`
	MapURL           string                `koanf:"map_url"`
	MapLayer         string                `koanf:"map_layer"`
	GeneratorName    string                `koanf:"generator_name"`
	GeneratorVersion string                `koanf:"generator_version"`
	GeneratorURL     string                `koanf:"generator_url"`
	AppEnv           domain.AppEnv         `koanf:"app_env"`
}

// DefaultFiles are the config files looked up in the working directory.
var DefaultFiles = []string{
	"config.yaml",
	"config.yml",
	"config.json",
	"config.toml",
}

var defaults = map[string]any{
	"http_port":         "8080",
	"public_url":        "http://localhost:8080",
	"telegram_base_url": "https://t.me",
	"telegram_api_url":  "https://api.telegram.org",
	"request_timeout":   30,
	"user_agent":        "Mozilla/5.0 (compatible; tgweb2rss/1.0)",
	"default_pages":     1,
	"max_pages":         10,
	"pagination_mode":   "prev_link",
	"strict_extraction": false,
	"map_url":           "https://www.openstreetmap.org/",
	"map_layer":         "M",
	"generator_name":    "tgweb2rss",
	"generator_version": "1.0.0",
	"generator_url":     "https://github.com/reshetovitsme/tgweb2rss",
	"app_env":           "production",
}

func Load() (*Config, error) {
	return LoadFiles(DefaultFiles)
}

// LoadFiles loads the first existing file of configFiles, then environment
// variables, then defaults for whatever is still unset.
func LoadFiles(configFiles []string) (*Config, error) {
	k := koanf.New(".")

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// allowed_users is a comma separated string in env vars and a list in files
	if allowedUsers := k.Get("allowed_users"); allowedUsers != nil {
		switch v := allowedUsers.(type) {
		case string:
			cfg.AllowedUsers = ParseAllowedUsers(v)
		case []interface{}:
			cfg.AllowedUsers = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
				switch val := item.(type) {
				case int64:
					return val, true
				case int:
					return int64(val), true
				case float64:
					return int64(val), true
				default:
					return 0, false
				}
			})
		}
	}

	if env, err := domain.ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = env
	} else {
		cfg.AppEnv = domain.AppEnvProduction
	}

	mode, err := domain.ParsePaginationMode(k.String("pagination_mode"))
	if err != nil {
		return nil, oops.With("pagination_mode", k.String("pagination_mode")).Wrap(err)
	}
	cfg.PaginationMode = mode

	if cfg.MaxPages < 1 || cfg.DefaultPages < 1 || cfg.DefaultPages > cfg.MaxPages {
		return nil, oops.With("default_pages", cfg.DefaultPages, "max_pages", cfg.MaxPages).Wrap(errors.ErrInvalidPages)
	}

	return &cfg, nil
}

// Timeout returns RequestTimeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// BotEnabled reports whether the Telegram bot front-end should run.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// IsAllowed reports whether userID may use the bot. An empty allow list
// admits everybody.
func (c *Config) IsAllowed(userID int64) bool {
	return len(c.AllowedUsers) == 0 || lo.Contains(c.AllowedUsers, userID)
}

// Authorize fails with errors.ErrUnauthorized when userID is not allowed.
func (c *Config) Authorize(userID int64) error {
	if !c.IsAllowed(userID) {
		return oops.With("user_id", userID).Wrap(errors.ErrUnauthorized)
	}
	return nil
}

// ParseAllowedUsers parses comma-separated user IDs string into []int64
func ParseAllowedUsers(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}
