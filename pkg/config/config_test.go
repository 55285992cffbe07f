package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[dict]
paths = ["dicts/lt", "dicts/no"]
phrase_marker = "idioms"
watch = true
debounce_ms = 100

[server]
codec = "json"
cache_size = 32

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dicts/lt", "dicts/no"}, cfg.Dict.Paths)
	assert.Equal(t, "idioms", cfg.Dict.PhraseMarker)
	assert.True(t, cfg.Dict.Watch)
	assert.Equal(t, 100*time.Millisecond, cfg.Dict.Debounce())
	assert.Equal(t, "json", cfg.Server.Codec)
	assert.Equal(t, 32, cfg.Server.CacheSize)
	assert.Equal(t, DefaultConfig().Server.MaxTextLength, cfg.Server.MaxTextLength)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.CLI.ShowRelated)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := writeConfig(t, `
[dict]
workers = "four"
phrase_marker = "frazes"

[server]
max_text_length = 500
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "frazes", cfg.Dict.PhraseMarker)
	assert.Equal(t, 0, cfg.Dict.Workers)
	assert.Equal(t, 500, cfg.Server.MaxTextLength)
}

func TestLoadConfigGarbage(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[[[ not toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNormalize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Codec = "xml"
	cfg.Dict.Paths = nil
	cfg.Server.MaxTextLength = -1
	cfg.normalize()
	assert.Equal(t, "msgpack", cfg.Server.Codec)
	assert.Equal(t, []string{"data"}, cfg.Dict.Paths)
	assert.Equal(t, 100000, cfg.Server.MaxTextLength)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WORDLENS_DICT_PATHS", "a,b")
	t.Setenv("WORDLENS_CODEC", "json")
	t.Setenv("WORDLENS_WATCH", "true")
	t.Setenv("WORDLENS_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	cfg.Server.CacheSize = 7
	cfg.Log.Timestamp = true
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, []string{"a", "b"}, cfg.Dict.Paths)
	assert.Equal(t, "json", cfg.Server.Codec)
	assert.True(t, cfg.Dict.Watch)
	assert.Equal(t, "warn", cfg.Log.Level)

	// unset variables keep what was there
	assert.Equal(t, "phrases", cfg.Dict.PhraseMarker)
	assert.Equal(t, 7, cfg.Server.CacheSize)
	assert.True(t, cfg.Log.Timestamp)
	assert.Equal(t, DefaultConfig().Server.MaxTextLength, cfg.Server.MaxTextLength)
}

func TestLoadConfigWithPriorityEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\ncodec = \"json\"\ncache_size = 12\n")
	t.Setenv("WORDLENS_CACHE_SIZE", "99")
	t.Setenv("WORDLENS_MAX_TEXT_LENGTH", "-5")

	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "json", cfg.Server.Codec)
	assert.Equal(t, 99, cfg.Server.CacheSize)
	assert.Equal(t, DefaultConfig().Server.MaxTextLength, cfg.Server.MaxTextLength)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeConfig(t, "[server]\ncodec = \"json\"\n")
	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "json", cfg.Server.Codec)
}

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestUpdate(t *testing.T) {
	path := writeConfig(t, "")
	cfg := DefaultConfig()
	limit := 42
	related := false
	require.NoError(t, cfg.Update(path, &limit, nil, &related))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Server.MaxTextLength)
	assert.False(t, loaded.CLI.ShowRelated)
}
