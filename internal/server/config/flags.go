package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/passgate/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN for the verification audit
//	-s string   unlock token signing key
//	-t int      unlock token validity, minutes (0 = no expiry)
//	-w string   site content file
//	-o string   local content directory
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m int      verification attempts per minute per client and resource (0 = unlimited)
//	-n int      verification burst size
//	-l string   log level
//	-digest     read a secret from stdin, print its argon2id digest and exit
//
// Only these flags are considered; the rest of os.Args is filtered out
// with flagx.FilterArgs so -c/-config can coexist.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-w", "-o", "-u", "-p", "-b", "-g", "-e", "-m", "-n", "-l", "-digest"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenSigningKey, "s", config.TokenSigningKey, "unlock token signing key")

	unlockTokenTTL := fs.Int("t", int(config.UnlockTokenTTL.Minutes()), "unlock token validity (in minutes, 0 = no expiry)")

	fs.StringVar(&config.SiteConfigPath, "w", config.SiteConfigPath, "site content file")
	fs.StringVar(&config.ContentDir, "o", config.ContentDir, "local content directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.IntVar(&config.RateLimitPerMinute, "m", config.RateLimitPerMinute, "verification attempts per minute (0 = unlimited)")
	fs.IntVar(&config.RateLimitBurst, "n", config.RateLimitBurst, "verification burst")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.PrintDigest, "digest", config.PrintDigest, "print the argon2id digest of a secret read from stdin and exit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.UnlockTokenTTL = time.Duration(*unlockTokenTTL) * time.Minute
}
