package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the trophyshop CLI.
//
// Fields:
//   - ServerURL: base URL of the server HTTP API.
//   - CachePath: SQLite file backing the persisted catalog cache.
//   - RequestTimeout: per-request HTTP timeout.
//   - CacheFreshnessWindow: how long a cached listing is served without a
//     newer admin write.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL            string        `env:"TROPHYSHOP_SERVER_URL"`
	CachePath            string        `env:"TROPHYSHOP_CACHE_PATH"`
	RequestTimeout       time.Duration `env:"TROPHYSHOP_REQUEST_TIMEOUT"`
	CacheFreshnessWindow time.Duration `env:"TROPHYSHOP_CACHE_WINDOW"`
	LogLevel             string        `env:"TROPHYSHOP_LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.CachePath = "trophyshop-cache.db"
	c.RequestTimeout = 15 * time.Second
	c.CacheFreshnessWindow = 10 * time.Minute
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	args := os.Args[1:]
	parseJson(cfg, args)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg, args)
	return cfg
}
