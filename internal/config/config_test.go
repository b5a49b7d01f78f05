package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Config{
		DBPath:            "ehj.db",
		HintDelay:         500 * time.Millisecond,
		LeaderboardWindow: 5 * time.Minute,
		LogLevel:          "info",
	}, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("EHJ_DB_PATH", "/tmp/game.db")
	t.Setenv("EHJ_CATALOG_DIR", "/srv/missions")
	t.Setenv("EHJ_HINT_DELAY", "0s")
	t.Setenv("EHJ_RANDOM_SEED", "42")
	t.Setenv("EHJ_LEADERBOARD_WINDOW", "1m")
	t.Setenv("EHJ_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		DBPath:            "/tmp/game.db",
		CatalogDir:        "/srv/missions",
		HintDelay:         0,
		RandomSeed:        42,
		LeaderboardWindow: time.Minute,
		LogLevel:          "debug",
	}, cfg)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"malformed duration", "EHJ_HINT_DELAY", "soon", "parse env:"},
		{"malformed seed", "EHJ_RANDOM_SEED", "-1", "parse env:"},
		{"negative delay", "EHJ_HINT_DELAY", "-1s", "EHJ_HINT_DELAY"},
		{"zero window", "EHJ_LEADERBOARD_WINDOW", "0s", "EHJ_LEADERBOARD_WINDOW"},
		{"unknown level", "EHJ_LOG_LEVEL", "chatty", "EHJ_LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCatalog(t *testing.T) {
	cat, err := Config{}.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())

	dir := t.TempDir()
	_, err = Config{CatalogDir: filepath.Join(dir, "missing")}.Catalog()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.yaml"), []byte("missions: []\n"), 0o644))
	_, err = Config{CatalogDir: dir}.Catalog()
	assert.Error(t, err, "an empty catalog is rejected")
}

func TestRandom_SeededIsDeterministic(t *testing.T) {
	a, err := Config{RandomSeed: 7}.Random()
	require.NoError(t, err)
	b, err := Config{RandomSeed: 7}.Random()
	require.NoError(t, err)
	assert.Equal(t, a.Float64(), b.Float64())

	_, err = Config{}.Random()
	assert.NoError(t, err)
}
