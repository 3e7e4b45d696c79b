package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/selic-window/internal/accrual"
	"github.com/iwvelando/selic-window/internal/simulation"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/iwvelando/selic-window/pkg/validation"
	"github.com/shopspring/decimal"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the set of problems found by ValidateConfiguration. It
// matches simulation.ErrInvalidParameters under errors.Is.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return fmt.Sprintf("%s: %s", simulation.ErrInvalidParameters, strings.Join(msgs, "; "))
}

// Unwrap exposes the parameter sentinel.
func (e ValidationErrors) Unwrap() error {
	return simulation.ErrInvalidParameters
}

// ValidateConfiguration checks every field and returns the warnings that do
// not prevent a run. The error is a ValidationErrors when any field is invalid.
func (c *Configuration) ValidateConfiguration() ([]string, error) {
	var errs ValidationErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	startDate, startErr := datetime.ParseDate(c.Period.StartDate)
	if startErr != nil {
		add("period.startDate", "%v", startErr)
	} else if startDate.Before(datetime.MustParseTime(constants.DateLayout, constants.MinStartDate)) {
		add("period.startDate", "must be on or after %s, got %s", constants.MinStartDate, startDate.Format(constants.DateLayout))
	}

	endDate, endErr := datetime.ParseDate(c.Period.EndDate)
	if endErr != nil {
		add("period.endDate", "%v", endErr)
	} else if startErr == nil && !endDate.After(startDate) {
		add("period.endDate", "must be after the start date %s, got %s",
			startDate.Format(constants.DateLayout), endDate.Format(constants.DateLayout))
	}

	if capital, err := decimal.NewFromString(strings.TrimSpace(c.InitialCapital)); err != nil {
		add("initialCapital", "invalid amount %q", c.InitialCapital)
	} else if !capital.IsPositive() {
		add("initialCapital", "must be positive, got %s", capital)
	}

	if _, err := accrual.ParseFrequency(c.Frequency); err != nil {
		add("frequency", "%v", err)
	}

	if c.WindowLengthDays <= 0 {
		add("windowLengthDays", "must be positive, got %d", c.WindowLengthDays)
	}

	if c.Source.Series <= 0 {
		add("source.series", "must be a positive SGS series code, got %d", c.Source.Series)
	}
	if c.Source.Timeout < 0 {
		add("source.timeout", "must not be negative, got %s", c.Source.Timeout)
	}
	if c.CacheEnabled() && c.Cache.TTL <= 0 {
		add("cache.ttl", "must be positive when the cache is enabled, got %s", c.Cache.TTL)
	}
	if c.PublisherEnabled() && strings.TrimSpace(c.Publisher.Topic) == "" {
		add("publisher.topic", "must be set when brokers are configured")
	}

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			add("output.format", "%v", err)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	pv := validation.PeriodValidator{
		StartDate:        startDate,
		EndDate:          endDate,
		WindowLengthDays: c.WindowLengthDays,
	}
	return pv.ValidateAll(), nil
}

// period returns the parsed start and end dates.
func (c *Configuration) period() (time.Time, time.Time, error) {
	startDate, err := datetime.ParseDate(c.Period.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := datetime.ParseDate(c.Period.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startDate, endDate, nil
}
