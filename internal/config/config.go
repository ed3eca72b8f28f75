package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phish-trust-filter/")
	v.AddConfigPath("$HOME/.phish-trust-filter")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("PHISH_FILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.filter_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_phishing", false)
	v.SetDefault("server.modify_subject", true)
	v.SetDefault("server.subject_prefix", "[SUSPECTED PHISHING] ")
	v.SetDefault("server.max_text_size", 8192)
	v.SetDefault("server.headers.verdict", "X-Phish-Verdict")
	v.SetDefault("server.headers.trust", "X-Phish-Trust")
	v.SetDefault("server.headers.tier", "X-Phish-Tier")
	v.SetDefault("server.headers.reason", "X-Phish-Reason")
	v.SetDefault("server.headers.attack", "X-Phish-Attack")
	v.SetDefault("server.upstream.enabled", false)
	v.SetDefault("server.upstream.address", "127.0.0.1")
	v.SetDefault("server.upstream.port", 10026)

	// Classifier defaults. Empty model paths select the built-in pair.
	v.SetDefault("classifier.model_paths", []string{})
	v.SetDefault("classifier.fusion_weights", []float64{})
	v.SetDefault("classifier.threshold", 0.5)

	// Trust aggregation defaults
	v.SetDefault("trust.weights.confidence", 0.35)
	v.SetDefault("trust.weights.fidelity", 0.40)
	v.SetDefault("trust.weights.stability", 0.25)

	// Instability probe defaults
	v.SetDefault("probe.seed", 1337)
	v.SetDefault("probe.max_parallel", 4)
	v.SetDefault("probe.strategies", []string{})

	// Explanation defaults
	v.SetDefault("explain.surrogate_enabled", true)
	v.SetDefault("explain.surrogate_timeout", "2s")
	v.SetDefault("explain.surrogate_samples", 24)

	// Domain list defaults; empty lists keep the built-in sets.
	v.SetDefault("domains.trusted", []string{})
	v.SetDefault("domains.brands", []string{})
	v.SetDefault("domains.typo_patterns", []string{})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/verdict_cache.db")
	v.SetDefault("cache.mysql.host", "localhost")
	v.SetDefault("cache.mysql.port", 3306)
	v.SetDefault("cache.mysql.user", "phish_filter")
	v.SetDefault("cache.mysql.password", "")
	v.SetDefault("cache.mysql.database", "phish_filter")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	// Feedback defaults
	v.SetDefault("feedback.enabled", true)
	v.SetDefault("feedback.type", "memory")
	v.SetDefault("feedback.sqlite_path", "/data/feedback_log.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetFloat64Slice gets a float64 slice value from the configuration
func (c *Config) GetFloat64Slice(key string) []float64 {
	raw := c.v.Get(key)
	switch vals := raw.(type) {
	case []float64:
		return vals
	case []interface{}:
		out := make([]float64, 0, len(vals))
		for _, item := range vals {
			switch n := item.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			}
		}
		return out
	default:
		return nil
	}
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
