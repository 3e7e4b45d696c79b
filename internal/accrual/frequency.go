package accrual

import (
	"fmt"
	"strings"

	"github.com/iwvelando/selic-window/pkg/constants"
)

// Frequency controls which days become reported snapshots.
type Frequency string

// Supported snapshot frequencies.
const (
	Day   Frequency = constants.FrequencyDay
	Month Frequency = constants.FrequencyMonth
	Year  Frequency = constants.FrequencyYear
)

// ParseFrequency converts a case-insensitive name into a Frequency.
func ParseFrequency(value string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(value))); f {
	case Day, Month, Year:
		return f, nil
	default:
		return "", fmt.Errorf("invalid frequency %q, expected %s, %s or %s", value, Day, Month, Year)
	}
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Day, Month, Year:
		return true
	}
	return false
}

func (f Frequency) String() string {
	return string(f)
}
