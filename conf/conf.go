package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultAPIURL       = "http://localhost:8080/api"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultParallelRuns = 1
)

type Config struct {
	APIURL       string        `toml:"api_url"`
	LogLevel     string        `toml:"log_level"`
	HTTPTimeout  time.Duration `toml:"-"`
	ParallelRuns int           `toml:"parallel_runs"`

	// TOML has no duration type; "30s" style strings are parsed.
	HTTPTimeoutStr string `toml:"http_timeout"`

	Dirs Dirs `toml:"-"`
}

// Load reads .env (if present), then config.toml from the XDG config dir
// (if present), then environment variables. Later sources win.
func Load() (*Config, error) {
	// a missing .env is the normal case outside development
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:       DefaultAPIURL,
		LogLevel:     "warn",
		HTTPTimeout:  DefaultHTTPTimeout,
		ParallelRuns: DefaultParallelRuns,
		Dirs:         ResolveDirs(),
	}

	err := cfg.readFile(filepath.Join(cfg.Dirs.Config, "config.toml"))
	if err != nil {
		return nil, err
	}

	cfg.readEnv()

	if cfg.ParallelRuns < 1 {
		cfg.ParallelRuns = DefaultParallelRuns
	}

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	err = toml.Unmarshal(content, c)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if c.HTTPTimeoutStr != "" {
		d, err := time.ParseDuration(c.HTTPTimeoutStr)
		if err != nil {
			return fmt.Errorf("parsing http_timeout in %s: %w", path, err)
		}
		c.HTTPTimeout = d
	}
	return nil
}

func (c *Config) readEnv() {
	c.APIURL = getEnv("ARENA_API_URL", c.APIURL)
	c.LogLevel = getEnv("ARENA_LOG_LEVEL", c.LogLevel)
	c.ParallelRuns = getEnvAsInt("ARENA_PARALLEL_RUNS", c.ParallelRuns)
	if v, ok := os.LookupEnv("ARENA_HTTP_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTPTimeout = d
		}
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
