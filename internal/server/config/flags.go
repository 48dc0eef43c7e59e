package config

import (
	"flag"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/flagx"
)

var serverFlags = []string{
	"-a", "-d", "-s", "-t", "-l",
	"-admin-user", "-admin-password",
	"-storage", "-media-root", "-media-url",
	"-u", "-p", "-b", "-g", "-e", "-public-url",
	"-max-upload", "-types",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              HTTP bind address (e.g., ":8080")
//	-d string              PostgreSQL DSN
//	-s string              JWT HMAC secret key
//	-t int                 token validity, minutes
//	-l string              log level (debug, info, warn, error)
//	-admin-user string     bootstrap admin username
//	-admin-password string bootstrap admin password
//	-storage string        storage backend: local or s3
//	-media-root string     local media directory
//	-media-url string      public URL prefix of local media
//	-u / -p string         S3 user / password
//	-b string              S3 bucket
//	-g string              S3 region
//	-e string              S3 endpoint (e.g., "http://127.0.0.1:9000")
//	-public-url string     public base URL of S3 objects
//	-max-upload int        maximum upload size, bytes
//	-types string          comma-separated allowed content types
//
// Arguments not listed above are filtered out with flagx.FilterArgs so other
// layers (-c) can share the command line.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.StringVar(&config.AdminUsername, "admin-user", config.AdminUsername, "bootstrap admin username")
	fs.StringVar(&config.AdminPassword, "admin-password", config.AdminPassword, "bootstrap admin password")

	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "storage backend (local or s3)")
	fs.StringVar(&config.MediaRoot, "media-root", config.MediaRoot, "local media directory")
	fs.StringVar(&config.MediaBaseURL, "media-url", config.MediaBaseURL, "public URL prefix of local media")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "public-url", config.S3PublicBaseURL, "public base URL of S3 objects")

	fs.Int64Var(&config.MaxUploadSize, "max-upload", config.MaxUploadSize, "maximum upload size in bytes")
	types := fs.String("types", strings.Join(config.AllowedContentTypes, ","), "allowed upload content types")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only explicit flags overwrite, so a sub-minute JSON value survives.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		case "types":
			config.AllowedContentTypes = splitList(*types)
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
