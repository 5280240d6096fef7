package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path over the built-in defaults, then applies
// MARKETWATCH_* environment overrides (a .env file in the working directory
// is read first). An empty path or a missing file leaves the defaults. The
// returned Config has NOT been validated; call Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETWATCH_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	// ── Watcher ──
	setStr(&cfg.Watcher.LogDir, "MARKETWATCH_WATCHER_LOG_DIR")
	setStr(&cfg.Watcher.Extension, "MARKETWATCH_WATCHER_EXTENSION")
	setDuration(&cfg.Watcher.RetryDelay, "MARKETWATCH_WATCHER_RETRY_DELAY")
	setDuration(&cfg.Watcher.SettleDelay, "MARKETWATCH_WATCHER_SETTLE_DELAY")
	setInt(&cfg.Watcher.QueueSize, "MARKETWATCH_WATCHER_QUEUE_SIZE")
	setInt(&cfg.Watcher.ReadRetries, "MARKETWATCH_WATCHER_READ_RETRIES")
	setDuration(&cfg.Watcher.LockTTL, "MARKETWATCH_WATCHER_LOCK_TTL")

	// ── Data ──
	setStr(&cfg.Data.Dir, "MARKETWATCH_DATA_DIR")
	setStr(&cfg.Data.ProfileBackend, "MARKETWATCH_DATA_PROFILE_BACKEND")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "MARKETWATCH_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "MARKETWATCH_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "MARKETWATCH_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "MARKETWATCH_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "MARKETWATCH_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "MARKETWATCH_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "MARKETWATCH_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "MARKETWATCH_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "MARKETWATCH_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "MARKETWATCH_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "MARKETWATCH_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "MARKETWATCH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETWATCH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETWATCH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETWATCH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETWATCH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETWATCH_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.KeyPrefix, "MARKETWATCH_REDIS_KEY_PREFIX")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "MARKETWATCH_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "MARKETWATCH_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "MARKETWATCH_S3_REGION")
	setStr(&cfg.S3.Bucket, "MARKETWATCH_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "MARKETWATCH_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "MARKETWATCH_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "MARKETWATCH_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "MARKETWATCH_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "MARKETWATCH_S3_PREFIX")

	// ── Server ──
	setStr(&cfg.Server.Host, "MARKETWATCH_SERVER_HOST")
	setInt(&cfg.Server.Port, "MARKETWATCH_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "MARKETWATCH_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETWATCH_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimit, "MARKETWATCH_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "MARKETWATCH_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MARKETWATCH_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MARKETWATCH_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MARKETWATCH_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MARKETWATCH_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "MARKETWATCH_MODE")
	setStr(&cfg.LogLevel, "MARKETWATCH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
