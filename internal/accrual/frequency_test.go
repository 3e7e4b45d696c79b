package accrual

import "testing"

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input    string
		expected Frequency
		wantErr  bool
	}{
		{input: "day", expected: Day},
		{input: "Month", expected: Month},
		{input: " YEAR ", expected: Year},
		{input: "week", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrequency(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFrequency(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFrequency(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFrequencyValid(t *testing.T) {
	if !Day.Valid() || !Month.Valid() || !Year.Valid() {
		t.Error("expected built-in frequencies to be valid")
	}
	if Frequency("quarter").Valid() {
		t.Error("expected unknown frequency to be invalid")
	}
}
