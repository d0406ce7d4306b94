package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/booklib/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the booklib server
//	-t int      request timeout in seconds
//	-cache str  local cache file ("" disables)
//
// os.Args is filtered with flagx.FilterArgs so that -c / -config does not
// trip the flag set.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-cache"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server")
	fs.StringVar(&cfg.CacheFile, "cache", cfg.CacheFile, "local cache file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
