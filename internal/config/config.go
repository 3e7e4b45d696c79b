// Package config defines the data structures related to configuration and
// includes functions for loading, validating and converting the config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for selic-window.
type Configuration struct {
	Period           PeriodConfig    `yaml:"period"`
	InitialCapital   string          `yaml:"initialCapital"`
	Frequency        string          `yaml:"frequency"`
	WindowLengthDays int             `yaml:"windowLengthDays"`
	Source           SourceConfig    `yaml:"source"`
	Cache            CacheConfig     `yaml:"cache,omitempty"`
	Archive          ArchiveConfig   `yaml:"archive,omitempty"`
	Publisher        PublisherConfig `yaml:"publisher,omitempty"`
	Logging          LoggingConfig   `yaml:"logging,omitempty"`
	Output           OutputConfig    `yaml:"output,omitempty"`
}

// PeriodConfig holds the simulated date range. Dates are YYYY-MM-DD or
// DD/MM/YYYY.
type PeriodConfig struct {
	StartDate string `yaml:"startDate"`
	EndDate   string `yaml:"endDate"`
}

// SourceConfig selects the rate series on the BCB SGS API.
type SourceConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Series  int           `yaml:"series"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig configures the Redis rate cache. An empty Address disables it.
type CacheConfig struct {
	Address  string        `yaml:"address,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// ArchiveConfig configures the PostgreSQL rate archive. An empty DSN disables it.
type ArchiveConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

// PublisherConfig configures the Kafka event publisher. No brokers disables it.
type PublisherConfig struct {
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Configuration) CacheEnabled() bool {
	return strings.TrimSpace(c.Cache.Address) != ""
}

// ArchiveEnabled reports whether a PostgreSQL DSN is configured.
func (c *Configuration) ArchiveEnabled() bool {
	return strings.TrimSpace(c.Archive.DSN) != ""
}

// PublisherEnabled reports whether any Kafka broker is configured.
func (c *Configuration) PublisherEnabled() bool {
	for _, b := range c.Publisher.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("period.startDate", "")
	v.SetDefault("period.endDate", "")
	v.SetDefault("initialCapital", "")
	v.SetDefault("frequency", constants.FrequencyDay)
	v.SetDefault("windowLengthDays", constants.DefaultWindowLengthDays)
	v.SetDefault("source.baseURL", constants.DefaultSourceBaseURL)
	v.SetDefault("source.series", constants.DefaultSeries)
	v.SetDefault("source.timeout", constants.DefaultSourceTimeout)
	v.SetDefault("cache.address", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", constants.DefaultCacheTTL)
	v.SetDefault("archive.dsn", "")
	v.SetDefault("publisher.brokers", []string{})
	v.SetDefault("publisher.topic", constants.DefaultTopic)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Any key can be overridden by an environment variable
// such as SELIC_PERIOD_STARTDATE or SELIC_CACHE_ADDRESS.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &configuration, nil
}
