package config

import (
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/selic-window/internal/simulation"
)

func validConfiguration() Configuration {
	return Configuration{
		Period:           PeriodConfig{StartDate: "2010-01-04", EndDate: "2015-12-30"},
		InitialCapital:   "1000",
		Frequency:        "month",
		WindowLengthDays: 500,
		Source:           SourceConfig{BaseURL: "http://localhost", Series: 11, Timeout: time.Second},
		Output:           OutputConfig{Format: "pretty"},
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(c *Configuration)
		expectFields []string
		expectWarns  int
	}{
		{
			name:   "Valid configuration",
			modify: func(c *Configuration) {},
		},
		{
			name:   "DD/MM/YYYY dates",
			modify: func(c *Configuration) { c.Period = PeriodConfig{StartDate: "04/01/2010", EndDate: "30/12/2015"} },
		},
		{
			name:         "Start before minimum date",
			modify:       func(c *Configuration) { c.Period.StartDate = "1994-06-01" },
			expectFields: []string{"period.startDate"},
		},
		{
			name:         "Unparseable dates",
			modify:       func(c *Configuration) { c.Period = PeriodConfig{StartDate: "yesterday", EndDate: "2015-13-45"} },
			expectFields: []string{"period.startDate", "period.endDate"},
		},
		{
			name:         "End not after start",
			modify:       func(c *Configuration) { c.Period.EndDate = c.Period.StartDate },
			expectFields: []string{"period.endDate"},
		},
		{
			name:         "Bad capital and frequency",
			modify:       func(c *Configuration) { c.InitialCapital = "-1"; c.Frequency = "weekly" },
			expectFields: []string{"initialCapital", "frequency"},
		},
		{
			name:         "Non-numeric capital",
			modify:       func(c *Configuration) { c.InitialCapital = "lots" },
			expectFields: []string{"initialCapital"},
		},
		{
			name:         "Zero window",
			modify:       func(c *Configuration) { c.WindowLengthDays = 0 },
			expectFields: []string{"windowLengthDays"},
		},
		{
			name:         "Unsupported output format",
			modify:       func(c *Configuration) { c.Output.Format = "xml" },
			expectFields: []string{"output.format"},
		},
		{
			name: "Enabled cache without ttl",
			modify: func(c *Configuration) {
				c.Cache.Address = "localhost:6379"
				c.Cache.TTL = 0
			},
			expectFields: []string{"cache.ttl"},
		},
		{
			name: "Brokers without topic",
			modify: func(c *Configuration) {
				c.Publisher.Brokers = []string{"localhost:9092"}
				c.Publisher.Topic = ""
			},
			expectFields: []string{"publisher.topic"},
		},
		{
			name:        "Period shorter than window",
			modify:      func(c *Configuration) { c.Period.EndDate = "2010-06-30" },
			expectWarns: 1,
		},
		{
			name:        "Weekend end date",
			modify:      func(c *Configuration) { c.Period.EndDate = "2015-12-26" },
			expectWarns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := validConfiguration()
			tt.modify(&conf)

			warnings, err := conf.ValidateConfiguration()
			if len(tt.expectFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateConfiguration() error = %v", err)
				}
				if len(warnings) != tt.expectWarns {
					t.Errorf("ValidateConfiguration() returned %d warnings, expected %d: %v", len(warnings), tt.expectWarns, warnings)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("ValidateConfiguration() error = %v, expected ValidationErrors", err)
			}
			if !errors.Is(err, simulation.ErrInvalidParameters) {
				t.Errorf("error does not match simulation.ErrInvalidParameters")
			}
			if len(verrs) != len(tt.expectFields) {
				t.Fatalf("got %d errors %v, expected fields %v", len(verrs), verrs, tt.expectFields)
			}
			for i, field := range tt.expectFields {
				if verrs[i].Field != field {
					t.Errorf("error %d field = %s, expected %s", i, verrs[i].Field, field)
				}
			}
		})
	}
}
