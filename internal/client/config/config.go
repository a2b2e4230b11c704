package config

import "time"

// Config holds runtime settings for the reader CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gate server's gRPC endpoint.
//   - DatabasePath: SQLite file holding unlock records.
//   - RequestTimeout: upper bound for every call to the server.
//   - LogLevel: slog level name for diagnostics on stderr.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	RequestTimeout     time.Duration
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = ".passgate/unlocks.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
