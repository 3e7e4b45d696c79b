package config

import (
	"strings"

	"github.com/iwvelando/selic-window/internal/accrual"
	"github.com/iwvelando/selic-window/internal/simulation"
	"github.com/shopspring/decimal"
)

// ToParameters validates the configuration and converts it into simulation
// parameters. Warnings are returned alongside the parameters.
func (c *Configuration) ToParameters() (simulation.Parameters, []string, error) {
	warnings, err := c.ValidateConfiguration()
	if err != nil {
		return simulation.Parameters{}, nil, err
	}

	startDate, endDate, err := c.period()
	if err != nil {
		return simulation.Parameters{}, nil, err
	}
	capital, err := decimal.NewFromString(strings.TrimSpace(c.InitialCapital))
	if err != nil {
		return simulation.Parameters{}, nil, err
	}
	frequency, err := accrual.ParseFrequency(c.Frequency)
	if err != nil {
		return simulation.Parameters{}, nil, err
	}

	params, err := simulation.NewParameters(startDate, endDate, capital, frequency, c.WindowLengthDays)
	if err != nil {
		return simulation.Parameters{}, nil, err
	}
	return params, warnings, nil
}
