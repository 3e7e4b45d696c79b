package config

import (
	"errors"
	"testing"

	"github.com/iwvelando/selic-window/internal/accrual"
	"github.com/iwvelando/selic-window/internal/simulation"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/shopspring/decimal"
)

func TestToParameters(t *testing.T) {
	conf := validConfiguration()
	conf.Period = PeriodConfig{StartDate: "04/01/2010", EndDate: "2015-12-30"}
	conf.InitialCapital = " 2500.75 "
	conf.Frequency = "Year"

	params, warnings, err := conf.ToParameters()
	if err != nil {
		t.Fatalf("ToParameters() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings %v", warnings)
	}

	if got := params.StartDate.Format(constants.DateLayout); got != "2010-01-04" {
		t.Errorf("StartDate = %s, expected 2010-01-04", got)
	}
	if got := params.EndDate.Format(constants.DateLayout); got != "2015-12-30" {
		t.Errorf("EndDate = %s, expected 2015-12-30", got)
	}
	if !params.InitialCapital.Equal(decimal.RequireFromString("2500.75")) {
		t.Errorf("InitialCapital = %s, expected 2500.75", params.InitialCapital)
	}
	if params.Frequency != accrual.Year {
		t.Errorf("Frequency = %s, expected year", params.Frequency)
	}
	if params.WindowLengthDays != 500 {
		t.Errorf("WindowLengthDays = %d, expected 500", params.WindowLengthDays)
	}
}

func TestToParametersInvalid(t *testing.T) {
	conf := validConfiguration()
	conf.InitialCapital = "0"

	_, _, err := conf.ToParameters()
	if !errors.Is(err, simulation.ErrInvalidParameters) {
		t.Errorf("ToParameters() error = %v, expected ErrInvalidParameters", err)
	}
}

func TestToParametersFromFile(t *testing.T) {
	conf, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	params, _, err := conf.ToParameters()
	if err != nil {
		t.Fatalf("ToParameters() error = %v", err)
	}
	if !params.InitialCapital.Equal(decimal.RequireFromString("1000.5")) {
		t.Errorf("InitialCapital = %s, expected 1000.5", params.InitialCapital)
	}
	if params.Frequency != accrual.Month {
		t.Errorf("Frequency = %s, expected month", params.Frequency)
	}
}
