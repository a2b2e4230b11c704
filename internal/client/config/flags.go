package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/passgate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the gate server
//	-f string   local unlock database file
//	-r int      request timeout in seconds
//	-l string   log level
//
// Unknown flags are filtered out first (flagx.FilterArgs) so -c/-config
// can coexist. Parse errors panic.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "address and port of the gate server")
	fs.StringVar(&config.DatabasePath, "f", config.DatabasePath, "local unlock database file")

	requestTimeout := fs.Int("r", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
