package conf_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/arena/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearArenaEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ARENA_API_URL", "ARENA_LOG_LEVEL", "ARENA_PARALLEL_RUNS", "ARENA_HTTP_TIMEOUT"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearArenaEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := conf.Load()
	require.NoError(t, err)

	assert.Equal(t, conf.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, conf.DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, 1, cfg.ParallelRuns)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearArenaEnv(t)
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)

	dir := filepath.Join(cfgHome, "arena")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	content := `
api_url = "https://arena.example.com/api"
log_level = "debug"
parallel_runs = 4
http_timeout = "5s"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := conf.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://arena.example.com/api", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.ParallelRuns)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)

	t.Setenv("ARENA_API_URL", "http://127.0.0.1:9000")
	t.Setenv("ARENA_PARALLEL_RUNS", "0")

	cfg, err = conf.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.APIURL)
	assert.Equal(t, 1, cfg.ParallelRuns, "non-positive parallelism falls back to sequential")
}

func TestResolveDirsHonoursXDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state-home")
	t.Setenv("XDG_RUNTIME_DIR", "/tmp/run-user")

	dirs := conf.ResolveDirs()
	assert.Equal(t, "/tmp/state-home/arena", dirs.State)
	assert.Equal(t, "/tmp/run-user/arena", dirs.Runtime)
}
