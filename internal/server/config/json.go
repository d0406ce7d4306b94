package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/booklib/internal/flagx"
	"github.com/dmitrijs2005/booklib/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept both "24h"-style strings and integer nanoseconds.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	GRPCHealthAddr    *string        `json:"grpc_health_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	TokenTTL          timex.Duration `json:"token_ttl"`
	BcryptCost        int            `json:"bcrypt_cost"`
	DefaultCoverImage string         `json:"default_cover_image"`
	CORSOrigins       []string       `json:"cors_origins"`
	AuthRateLimit     float64        `json:"auth_rate_limit"`
	AuthRateBurst     int            `json:"auth_rate_burst"`
	LogLevel          string         `json:"log_level"`
	LogFormat         string         `json:"log_format"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
	S3RootUser        string         `json:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3PublicBaseURL   string         `json:"s3_public_base_url"`
}

// parseJson overlays values from the JSON file named by -c / -config.
// Keys that are absent from the file leave the current value untouched;
// grpc_health_addr may be set to "" explicitly to disable the health service.
// An unreadable or malformed file panics.
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

	setString(&config.HTTPAddr, c.HTTPAddr)
	if c.GRPCHealthAddr != nil {
		config.GRPCHealthAddr = *c.GRPCHealthAddr
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenTTL.Duration > 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.DefaultCoverImage, c.DefaultCoverImage)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.AuthRateLimit > 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	if c.AuthRateBurst > 0 {
		config.AuthRateBurst = c.AuthRateBurst
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
