// Package config handles configuration for the gate server, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the gate server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx) for the verification audit. Empty
//     keeps the audit in memory.
//   - TokenSigningKey: HMAC key for unlock tokens (HS256). Do not use the
//     default outside development.
//   - UnlockTokenTTL: unlock token lifetime; zero issues tokens that never
//     expire, matching unlock records that never expire on the client.
//   - SiteConfigPath: site content file (.json, .yaml, .yml) holding the
//     category secret. Watched and reloaded on change.
//   - ContentDir: local directory with blogs/<slug>/..., used when no S3
//     bucket is configured.
//   - S3*: S3-compatible content store settings.
//   - RateLimitPerMinute / RateLimitBurst: verification attempts allowed per
//     client and resource. Zero disables limiting.
//   - LogLevel: slog level name.
//   - PrintDigest: run the digest helper instead of the server.
type Config struct {
	EndpointAddrGRPC   string
	DatabaseDSN        string
	TokenSigningKey    string
	UnlockTokenTTL     time.Duration
	SiteConfigPath     string
	ContentDir         string
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	RateLimitPerMinute int
	RateLimitBurst     int
	LogLevel           string
	PrintDigest        bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: TokenSigningKey must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.TokenSigningKey = "secretKey"
	c.UnlockTokenTTL = 0
	c.SiteConfigPath = "site-content.json"
	c.ContentDir = "public"
	c.S3RootUser = ""
	c.S3RootPassword = ""
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.RateLimitPerMinute = 0
	c.RateLimitBurst = 0
	c.LogLevel = "info"
}

// UseS3 reports whether article content comes from S3 rather than ContentDir.
func (c *Config) UseS3() bool {
	return c.S3Bucket != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
