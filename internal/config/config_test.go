package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".txt", cfg.Watcher.Extension)
	assert.Equal(t, 5*time.Second, cfg.Watcher.RetryDelay.Duration)
	assert.Equal(t, "json", cfg.Data.ProfileBackend)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketwatch.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "watch"
log_level = "debug"

[watcher]
log_dir = "/srv/eve/marketlogs"
retry_delay = "2s"
settle_delay = "250ms"

[redis]
enabled = true
addr = "redis:6379"
`), 0o600))

	t.Setenv("MARKETWATCH_WATCHER_READ_RETRIES", "5")
	t.Setenv("MARKETWATCH_REDIS_ADDR", "cache:6380")
	t.Setenv("MARKETWATCH_NOTIFY_EVENTS", "snapshot, status ,")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "watch", cfg.Mode)
	assert.Equal(t, "/srv/eve/marketlogs", cfg.Watcher.LogDir)
	assert.Equal(t, 2*time.Second, cfg.Watcher.RetryDelay.Duration)
	assert.Equal(t, 250*time.Millisecond, cfg.Watcher.SettleDelay.Duration)
	assert.Equal(t, 5, cfg.Watcher.ReadRetries)
	assert.Equal(t, 128, cfg.Watcher.QueueSize)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"snapshot", "status"}, cfg.Notify.Events)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Server.Port, cfg.Server.Port)
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[watcher]\nretry_delay = \"soon\"\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "trade"
	cfg.Watcher.Extension = "txt"
	cfg.Data.ProfileBackend = "sqlite"
	cfg.Notify.Events = []string{"order_filled"}
	cfg.Notify.TelegramToken = "tok"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`unknown mode "trade"`,
		"watcher: extension must start with a dot",
		`unknown profile_backend "sqlite"`,
		`unknown event "order_filled"`,
		"telegram_token and telegram_chat_id",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateModes(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "server"
	assert.ErrorContains(t, cfg.Validate(), "redis: must be enabled for mode server")

	cfg.Redis.Enabled = true
	assert.NoError(t, cfg.Validate())

	cfg = Defaults()
	cfg.Mode = "watch"
	cfg.Server.Port = 0
	assert.NoError(t, cfg.Validate())

	cfg.Data.ProfileBackend = "postgres"
	cfg.Postgres.PoolMinConns = 9
	assert.ErrorContains(t, cfg.Validate(), "pool_min_conns")
}

func TestDefaultLogDir(t *testing.T) {
	env := map[string]string{"USERPROFILE": `C:\Users\pilot`, "HOME": "/home/pilot"}
	getenv := func(k string) string { return env[k] }

	assert.Equal(t,
		filepath.Join(`C:\Users\pilot`, "Documents", "EVE", "logs", "marketlogs"),
		defaultLogDir("windows", getenv))
	assert.Equal(t, "/home/pilot/.local/share/EVE/logs/marketlogs", defaultLogDir("linux", getenv))
	assert.Equal(t, "/home/pilot/.local/share/EVE/logs/marketlogs", defaultLogDir("darwin", getenv))
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "pw"
	cfg.S3.SecretKey = "secret"
	cfg.Server.APIKey = "key"
	cfg.Notify.Events = []string{"snapshot"}

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Postgres.Password)
	assert.Equal(t, "***", out.S3.SecretKey)
	assert.Equal(t, "***", out.Server.APIKey)
	assert.Empty(t, out.Redis.Password)
	assert.Equal(t, "pw", cfg.Postgres.Password)

	out.Notify.Events[0] = "status"
	assert.Equal(t, "snapshot", cfg.Notify.Events[0])
}
