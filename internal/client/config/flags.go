package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    base URL of the server
//	-db string   path of the SQLite cache file
//	-timeout int request timeout (in seconds)
//	-w int       cache freshness window (in seconds)
//	-l string    log level
//
// Durations are only overwritten when their flag is given.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-db", "-timeout", "-w", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the trophyshop server")
	fs.StringVar(&cfg.CachePath, "db", cfg.CachePath, "path of the local cache database")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	window := fs.Int("w", int(cfg.CacheFreshnessWindow.Seconds()), "cache freshness window (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "w":
			cfg.CacheFreshnessWindow = time.Duration(*window) * time.Second
		}
	})
}
