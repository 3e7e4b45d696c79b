package datetime

import "testing"

func TestLastBusinessDayOfMonth(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{name: "Month ends on Saturday", date: "2023-09-12", expected: "2023-09-29"},
		{name: "Month ends on Sunday", date: "2023-12-01", expected: "2023-12-29"},
		{name: "Month ends on weekday", date: "2023-10-31", expected: "2023-10-31"},
		{name: "Leap February", date: "2024-02-10", expected: "2024-02-29"},
		{name: "Common February", date: "2023-02-10", expected: "2023-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LastBusinessDayOfMonth(MustParseTime(DateLayout, tt.date))
			if got.Format(DateLayout) != tt.expected {
				t.Errorf("LastBusinessDayOfMonth(%s) = %s, expected %s", tt.date, got.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestMonthEndRollforward(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{name: "Mid month", date: "2023-09-12", expected: "2023-09-29"},
		{name: "On the boundary", date: "2023-09-29", expected: "2023-09-29"},
		{name: "Weekend after the boundary", date: "2023-09-30", expected: "2023-10-31"},
		{name: "First of month", date: "2024-08-01", expected: "2024-08-30"},
		{name: "Crosses year", date: "2023-12-30", expected: "2024-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthEndRollforward(MustParseTime(DateLayout, tt.date))
			if got.Format(DateLayout) != tt.expected {
				t.Errorf("MonthEndRollforward(%s) = %s, expected %s", tt.date, got.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestYearEndRollforward(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{name: "Year ends on Saturday", date: "2022-03-15", expected: "2022-12-30"},
		{name: "Weekend after the boundary", date: "2022-12-31", expected: "2023-12-29"},
		{name: "Year ends on Friday", date: "2021-12-31", expected: "2021-12-31"},
		{name: "Year ends on Sunday", date: "2023-07-01", expected: "2023-12-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := YearEndRollforward(MustParseTime(DateLayout, tt.date))
			if got.Format(DateLayout) != tt.expected {
				t.Errorf("YearEndRollforward(%s) = %s, expected %s", tt.date, got.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestBusinessBoundaryPredicates(t *testing.T) {
	tests := []struct {
		date      string
		monthEnd  bool
		yearEnd   bool
		isWeekend bool
	}{
		{date: "2023-09-29", monthEnd: true, yearEnd: false},
		{date: "2023-09-30", monthEnd: false, yearEnd: false, isWeekend: true},
		{date: "2023-09-28", monthEnd: false, yearEnd: false},
		{date: "2023-12-29", monthEnd: true, yearEnd: true},
		{date: "2023-12-31", monthEnd: false, yearEnd: false, isWeekend: true},
		{date: "2021-12-31", monthEnd: true, yearEnd: true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d := MustParseTime(DateLayout, tt.date)
			if got := IsBusinessMonthEnd(d); got != tt.monthEnd {
				t.Errorf("IsBusinessMonthEnd(%s) = %v, expected %v", tt.date, got, tt.monthEnd)
			}
			if got := IsBusinessYearEnd(d); got != tt.yearEnd {
				t.Errorf("IsBusinessYearEnd(%s) = %v, expected %v", tt.date, got, tt.yearEnd)
			}
			if got := IsWeekend(d); got != tt.isWeekend {
				t.Errorf("IsWeekend(%s) = %v, expected %v", tt.date, got, tt.isWeekend)
			}
		})
	}
}
