package etrade

import (
	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvPrefix is the variable prefix read by ConfigFromEnv when
// prefix is empty, e.g. ETRADE_CONSUMER_KEY.
const DefaultEnvPrefix = "etrade"

// ConfigFromEnv loads a Config from PREFIX_CONSUMER_KEY,
// PREFIX_CONSUMER_SECRET, PREFIX_SANDBOX, PREFIX_BASE_URL and
// PREFIX_AUTHORIZE_URL.
func ConfigFromEnv(prefix string) (Config, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, &ConfigError{Field: "environment", Err: err}
	}
	return cfg, nil
}
