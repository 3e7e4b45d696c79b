// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/selic-window/internal/simulation"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result simulation.Result) {
	p := message.NewPrinter(language.English)
	params := result.Parameters

	_, _ = fmt.Fprintf(w, "--- Accrual from %s to %s (%s) ---\n",
		params.StartDate.Format(constants.DateLayout), params.EndDate.Format(constants.DateLayout), params.Frequency)
	_, _ = fmt.Fprintf(w, "Initial capital: %s\n", format.Currency(params.InitialCapital))
	_, _ = fmt.Fprintf(w, "Final capital:   %s\n", format.Currency(result.Summary.FinalCapital))
	_, _ = fmt.Fprintf(w, "Amount earned:   %s (%s)\n", format.Currency(result.Summary.AmountEarned), format.Percent(result.Summary.ReturnRatio))
	_, _ = p.Fprintf(w, "Rates used:      %d\n", result.RateCount)
	_, _ = p.Fprintf(w, "Snapshots:       %d\n\n", len(result.Snapshots))

	_, _ = fmt.Fprintf(w, "Date       | Capital | Amount Earned\n")
	_, _ = fmt.Fprintf(w, "__________ | _______ | _____________\n")
	for _, s := range result.Snapshots {
		_, _ = fmt.Fprintf(w, "%s | %s | %s\n", s.Date.Format(constants.DateLayout), format.Currency(s.Capital), format.Currency(s.AmountEarned))
	}
	_, _ = fmt.Fprintf(w, "\n")

	if result.Window == nil {
		_, _ = p.Fprintf(w, "No profitable %d day window in period\n", params.WindowLengthDays)
		return
	}

	win := result.Window
	_, _ = p.Fprintf(w, "Best %d day window: %s to %s\n", params.WindowLengthDays,
		win.StartDate.Format(constants.DateLayout), win.EndDate.Format(constants.DateLayout))
	_, _ = fmt.Fprintf(w, "Profit ratio: %s (%s)\n", format.Ratio(win.ProfitRatio), format.Percent(win.ProfitRatio))
	_, _ = fmt.Fprintf(w, "Capital: %s on %s -> %s on %s\n",
		format.Currency(win.StartCapital), win.StartObserved.Format(constants.DateLayout),
		format.Currency(win.EndCapital), win.EndObserved.Format(constants.DateLayout))
	if win.Truncated {
		_, _ = fmt.Fprintf(w, "Note: the window extends past the last available rate\n")
	}
}

// CsvFormat writes the snapshots in comma-separated value format, followed by
// the best window as a second record block when one exists.
func CsvFormat(w io.Writer, result simulation.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "capital", "amount_earned"}); err != nil {
		return err
	}
	for _, s := range result.Snapshots {
		record := []string{
			s.Date.Format(constants.DateLayout),
			s.Capital.StringFixed(constants.DisplayPrecision),
			s.AmountEarned.StringFixed(constants.DisplayPrecision),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	if win := result.Window; win != nil {
		if err := cw.Write([]string{"window_start", "window_end", "profit_ratio", "truncated"}); err != nil {
			return err
		}
		record := []string{
			win.StartDate.Format(constants.DateLayout),
			win.EndDate.Format(constants.DateLayout),
			format.Ratio(win.ProfitRatio),
			fmt.Sprintf("%t", win.Truncated),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CsvString returns CsvFormat output as a string.
func CsvString(result simulation.Result) (string, error) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// JSONFormat writes the full result as indented JSON.
func JSONFormat(w io.Writer, result simulation.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Write dispatches to the writer for outputFormat.
func Write(w io.Writer, outputFormat string, result simulation.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, result)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, result)
	case constants.OutputFormatJSON:
		return JSONFormat(w, result)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}
