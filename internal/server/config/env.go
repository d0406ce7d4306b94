package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/booklib/internal/flagx"
)

// EnvPrefix prefixes every BOOKLIB_* variable bound through struct tags.
const EnvPrefix = "BOOKLIB_"

const defaultEnvFile = ".env"

// parseEnv loads a dotenv file (the -env-file flag, or ./.env when present)
// into the process environment without overriding variables that are already
// set, then overlays the environment onto config.
//
// Besides the BOOKLIB_* variables, the deployment names PORT, DATABASE_URL and
// JWT_SECRET are honoured; the prefixed variables win when both are set.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlag()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.HTTPAddr = ":" + port
	}
	if dsn, ok := os.LookupEnv("DATABASE_URL"); ok && dsn != "" {
		config.DatabaseDSN = dsn
	}
	if secret, ok := os.LookupEnv("JWT_SECRET"); ok && secret != "" {
		config.SecretKey = secret
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
