package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/trophyshop/internal/flagx"
	"github.com/dmitrijs2005/trophyshop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL            string         `json:"server_url"`
	CachePath            string         `json:"cache_path"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	CacheFreshnessWindow timex.Duration `json:"cache_freshness_window"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Keys missing from the file keep their current value. Read or unmarshal
// errors panic.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	jc := JsonConfig{
		ServerURL:            cfg.ServerURL,
		CachePath:            cfg.CachePath,
		RequestTimeout:       timex.Duration{Duration: cfg.RequestTimeout},
		CacheFreshnessWindow: timex.Duration{Duration: cfg.CacheFreshnessWindow},
		LogLevel:             cfg.LogLevel,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.CachePath = jc.CachePath
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.CacheFreshnessWindow = jc.CacheFreshnessWindow.Duration
	cfg.LogLevel = jc.LogLevel
}
