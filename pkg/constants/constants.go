// Package constants provides shared constants for the selic-window application.
package constants

// DateLayout is the ISO date format used in config files and in output.
const DateLayout = "2006-01-02"

// BCBDateLayout is the dd/mm/yyyy format used by the BCB SGS API and accepted
// as an alternative input format.
const BCBDateLayout = "02/01/2006"

// MinStartDate is the earliest start date accepted for a simulation period.
const MinStartDate = "1995-01-01"

// Financial constants
const (
	// PercentageMultiplier converts a percentage rate into a fraction.
	PercentageMultiplier = 100

	// AccrualPrecision is the number of decimal places kept after every
	// compounding step.
	AccrualPrecision = 18

	// DisplayPrecision is the number of decimal places used for currency output.
	DisplayPrecision = 2

	// RatioDisplayPrecision is the number of decimal places used for profit ratios.
	RatioDisplayPrecision = 6

	// DefaultWindowLengthDays is the default holding window in calendar days.
	DefaultWindowLengthDays = 500

	// RelativeTolerance bounds the relative error accepted when comparing
	// compounded values.
	RelativeTolerance = 1e-9
)

// Frequency names accepted for snapshot reporting.
const (
	FrequencyDay   = "day"
	FrequencyMonth = "month"
	FrequencyYear  = "year"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment variable overrides for the configuration.
	EnvPrefix = "SELIC"
)

// Rate source defaults
const (
	// DefaultSourceBaseURL is the BCB open data API host.
	DefaultSourceBaseURL = "https://api.bcb.gov.br"

	// DefaultSeries is the SGS series code of the daily SELIC rate.
	DefaultSeries = 11

	// DefaultSourceTimeout is the default HTTP timeout for rate fetches.
	DefaultSourceTimeout = "30s"

	// DefaultCacheTTL is the default lifetime of cached rate series.
	DefaultCacheTTL = "24h"

	// DefaultTopic is the default Kafka topic for simulation events.
	DefaultTopic = "selic-simulations"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024
)
