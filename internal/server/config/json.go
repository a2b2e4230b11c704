package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/passgate/internal/flagx"
	"github.com/dmitrijs2005/passgate/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations
// use timex.Duration so "12h" and integer nanoseconds both work.
type JsonConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        string         `json:"database_dsn"`
	TokenSigningKey    string         `json:"token_signing_key"`
	UnlockTokenTTL     timex.Duration `json:"unlock_token_ttl"`
	SiteConfigPath     string         `json:"site_config_path"`
	ContentDir         string         `json:"content_dir"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	RateLimitPerMinute int            `json:"rate_limit_per_minute"`
	RateLimitBurst     int            `json:"rate_limit_burst"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with the file named by -c/-config, if any.
// The whole file replaces the corresponding fields, so it should be
// complete. Read or decode failures panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.TokenSigningKey = c.TokenSigningKey
	config.UnlockTokenTTL = c.UnlockTokenTTL.Duration
	config.SiteConfigPath = c.SiteConfigPath
	config.ContentDir = c.ContentDir
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.RateLimitPerMinute = c.RateLimitPerMinute
	config.RateLimitBurst = c.RateLimitBurst
	config.LogLevel = c.LogLevel
}
