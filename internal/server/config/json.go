package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/talkroom/talkroom/internal/flagx"
	"github.com/talkroom/talkroom/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30s" and integer nanoseconds.
//
// It is an intermediate DTO used only for reading JSON configuration files;
// after unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	BcryptCost            int            `json:"bcrypt_cost"`
	CacheSize             int            `json:"cache_size"`
	CacheTTL              timex.Duration `json:"cache_ttl"`
	StoreCallTimeout      timex.Duration `json:"store_call_timeout"`
	StoreRetryMax         uint64         `json:"store_retry_max"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no flag is set, nothing is
// loaded. An unreadable or malformed file panics: a half-applied
// configuration is worse than a failed start.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.BcryptCost = c.BcryptCost
	config.CacheSize = c.CacheSize
	config.CacheTTL = time.Duration(c.CacheTTL.Duration)
	config.StoreCallTimeout = time.Duration(c.StoreCallTimeout.Duration)
	config.StoreRetryMax = c.StoreRetryMax
}
