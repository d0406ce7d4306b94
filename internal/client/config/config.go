// Package config loads runtime configuration for the booklib terminal client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. BOOKLIB_SERVER_URL, BOOKLIB_REQUEST_TIMEOUT and BOOKLIB_CACHE_FILE
//     environment variables.
//  4. Command-line flags -a (server URL), -t (request timeout, seconds) and
//     -cache (local cache file, "" disables the cache).
//
// JSON example:
//
//	{
//	  "server_url": "http://localhost:5000",
//	  "request_timeout": "10s",
//	  "cache_file": "booklib-cache.db"
//	}
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the booklib CLI.
type Config struct {
	ServerURL      string        `env:"SERVER_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	CacheFile      string        `env:"CACHE_FILE"`
}

// LoadDefaults populates c with defaults that match a locally running server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000"
	c.RequestTimeout = 10 * time.Second
	c.CacheFile = "booklib-cache.db"
}

func parseEnv(c *Config) {
	if err := env.ParseWithOptions(c, env.Options{Prefix: "BOOKLIB_"}); err != nil {
		panic(err)
	}
}

// LoadConfig builds a Config from defaults, then JSON, environment and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
