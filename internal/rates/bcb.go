package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/datetime"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a failed response is echoed into errors.
const maxErrorBody = 512

// BCBClient fetches daily rates from the Banco Central do Brasil SGS API.
type BCBClient struct {
	baseURL    string
	series     int
	httpClient *http.Client
	logger     *zap.Logger
}

type sgsRow struct {
	Data  string          `json:"data"`
	Valor decimal.Decimal `json:"valor"`
}

// NewBCBClient creates a client for the given SGS series. Zero values fall back
// to the public API host, the SELIC series and a 30 second timeout.
func NewBCBClient(logger *zap.Logger, baseURL string, series int, timeout time.Duration) *BCBClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = constants.DefaultSourceBaseURL
	}
	if series <= 0 {
		series = constants.DefaultSeries
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BCBClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		series:     series,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Series returns the SGS series code the client reads.
func (c *BCBClient) Series() int {
	return c.series
}

// FetchRates retrieves the series between start and end inclusive. Rows before
// start are dropped because the API answers with the previous business day
// when start is not one.
func (c *BCBClient) FetchRates(ctx context.Context, start, end time.Time) ([]DailyRate, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			end.Format(datetime.DateLayout), start.Format(datetime.DateLayout))
	}

	reqURL := c.requestURL(start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("rate source returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	series, err := decodeSGS(resp.Body)
	if err != nil {
		return nil, err
	}

	normalized, err := Normalize(series, start)
	if err != nil {
		return nil, fmt.Errorf("invalid rate series: %w", err)
	}

	c.logger.Debug("fetched rate series",
		zap.String("op", "rates.FetchRates"),
		zap.Int("series", c.series),
		zap.String("start", start.Format(datetime.DateLayout)),
		zap.String("end", end.Format(datetime.DateLayout)),
		zap.Int("received", len(series)),
		zap.Int("kept", len(normalized)),
		zap.Duration("duration", time.Since(began)),
	)

	return normalized, nil
}

func (c *BCBClient) requestURL(start, end time.Time) string {
	query := url.Values{}
	query.Set("formato", "json")
	query.Set("dataInicial", start.Format(datetime.BCBDateLayout))
	query.Set("dataFinal", end.Format(datetime.BCBDateLayout))
	return fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados?%s", c.baseURL, c.series, query.Encode())
}

func decodeSGS(r io.Reader) ([]DailyRate, error) {
	var rows []sgsRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode rate series: %w", err)
	}

	series := make([]DailyRate, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse(datetime.BCBDateLayout, strings.TrimSpace(row.Data))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i, row.Data, err)
		}
		series = append(series, DailyRate{Date: date, Rate: row.Valor})
	}
	return series, nil
}
