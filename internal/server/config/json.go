package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/trophyshop/internal/flagx"
	"github.com/dmitrijs2005/trophyshop/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "10m" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	AdminUsername         string         `json:"admin_username"`
	AdminPassword         string         `json:"admin_password"`
	LogLevel              string         `json:"log_level"`

	StorageBackend  string `json:"storage_backend"`
	MediaRoot       string `json:"media_root"`
	MediaBaseURL    string `json:"media_base_url"`
	S3RootUser      string `json:"s3_root_user"`
	S3RootPassword  string `json:"s3_root_password"`
	S3Bucket        string `json:"s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint"`
	S3PublicBaseURL string `json:"s3_public_base_url"`

	TempPrefix          string   `json:"temp_prefix"`
	MaxUploadSize       int64    `json:"max_upload_size"`
	AllowedContentTypes []string `json:"allowed_content_types"`

	CacheFreshnessWindow timex.Duration `json:"cache_freshness_window"`
	TempTTL              timex.Duration `json:"temp_ttl"`
	SweepInterval        timex.Duration `json:"sweep_interval"`
}

// parseJson loads the file named by -c/-config in args, if any. Keys absent
// from the file keep their current value. Unreadable files and invalid JSON
// panic.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}
	fromJson(config, c)
}

func toJson(config *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:              config.HTTPAddr,
		DatabaseDSN:           config.DatabaseDSN,
		SecretKey:             config.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: config.TokenValidityDuration},
		AdminUsername:         config.AdminUsername,
		AdminPassword:         config.AdminPassword,
		LogLevel:              config.LogLevel,
		StorageBackend:        config.StorageBackend,
		MediaRoot:             config.MediaRoot,
		MediaBaseURL:          config.MediaBaseURL,
		S3RootUser:            config.S3RootUser,
		S3RootPassword:        config.S3RootPassword,
		S3Bucket:              config.S3Bucket,
		S3Region:              config.S3Region,
		S3BaseEndpoint:        config.S3BaseEndpoint,
		S3PublicBaseURL:       config.S3PublicBaseURL,
		TempPrefix:            config.TempPrefix,
		MaxUploadSize:         config.MaxUploadSize,
		AllowedContentTypes:   config.AllowedContentTypes,
		CacheFreshnessWindow:  timex.Duration{Duration: config.CacheFreshnessWindow},
		TempTTL:               timex.Duration{Duration: config.TempTTL},
		SweepInterval:         timex.Duration{Duration: config.SweepInterval},
	}
}

func fromJson(config *Config, c *JsonConfig) {
	config.HTTPAddr = c.HTTPAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = c.TokenValidityDuration.Duration
	config.AdminUsername = c.AdminUsername
	config.AdminPassword = c.AdminPassword
	config.LogLevel = c.LogLevel
	config.StorageBackend = c.StorageBackend
	config.MediaRoot = c.MediaRoot
	config.MediaBaseURL = c.MediaBaseURL
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3PublicBaseURL = c.S3PublicBaseURL
	config.TempPrefix = c.TempPrefix
	config.MaxUploadSize = c.MaxUploadSize
	config.AllowedContentTypes = c.AllowedContentTypes
	config.CacheFreshnessWindow = c.CacheFreshnessWindow.Duration
	config.TempTTL = c.TempTTL.Duration
	config.SweepInterval = c.SweepInterval.Duration
}
