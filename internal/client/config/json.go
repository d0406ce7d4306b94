package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/booklib/internal/flagx"
	"github.com/dmitrijs2005/booklib/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	CacheFile      *string        `json:"cache_file"`
}

// parseJson overlays Config with values from the file named by -c / -config.
// Absent keys keep their current value; cache_file may be "" to disable the
// cache. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CacheFile != nil {
		cfg.CacheFile = *jc.CacheFile
	}
}
