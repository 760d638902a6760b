package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	log "github.com/sirupsen/logrus"
)

// Polygon serves split-adjusted daily aggregates per ticker and for the whole
// US stock market on a given date.
// https://polygon.io/docs/stocks
const defaultBaseURL = "https://api.polygon.io"

const (
	rangeTimeout   = 30 * time.Second
	groupedTimeout = 60 * time.Second
)

var ErrMissingAPIKey = errors.New("POLYGON_API_KEY not configured")

// StatusError is returned when the API answers with a non-200 status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("polygon returned status %d: %s", e.StatusCode, e.Body)
}

// Client is an HTTP client for the Polygon API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Polygon client
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a new Polygon client with a custom base URL (for testing)
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// GetDailyBars fetches adjusted daily bars for ticker between start and end inclusive
func (c *Client) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]DailyBar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		url.PathEscape(ticker), start.Format(ingest.DateLayout), end.Format(ingest.DateLayout))

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "asc")
	params.Set("limit", "50000")

	resp, err := c.get(ctx, path, params, rangeTimeout)
	if err != nil {
		return nil, err
	}

	bars := make([]DailyBar, 0, len(resp.Results))
	for _, r := range resp.Results {
		bar, ok := normalize(r, ticker)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// GetGroupedDaily fetches one day's adjusted bars for every US stock. Holidays
// return an empty slice.
func (c *Client) GetGroupedDaily(ctx context.Context, date time.Time) ([]DailyBar, error) {
	path := "/v2/aggs/grouped/locale/us/market/stocks/" + date.Format(ingest.DateLayout)

	params := url.Values{}
	params.Set("adjusted", "true")

	resp, err := c.get(ctx, path, params, groupedTimeout)
	if err != nil {
		return nil, err
	}

	bars := make([]DailyBar, 0, len(resp.Results))
	for _, r := range resp.Results {
		ticker := strings.ToUpper(strings.TrimSpace(r.Ticker))
		if ticker == "" {
			continue
		}
		bar, _ := normalize(r, ticker)
		// grouped rows carry no usable timestamp for some tickers; the request date wins
		bar.Date = date
		bars = append(bars, bar)
	}
	return bars, nil
}

func normalize(r AggResult, ticker string) (DailyBar, bool) {
	bar := DailyBar{
		Ticker: ticker,
		Open:   number(r.Open),
		High:   number(r.High),
		Low:    number(r.Low),
		Close:  number(r.Close),
		Volume: ingest.OptInt(ingest.ParseBigInt(r.Volume.String())),
		VWAP:   number(r.VWAP),
		Trades: ingest.OptInt(ingest.ParseBigInt(r.Trades.String())),
	}
	ms, err := r.Timestamp.Int64()
	if err != nil {
		return bar, false
	}
	t := time.UnixMilli(ms).UTC()
	bar.Date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return bar, true
}

// number decodes a float field; an absent or malformed value yields nil.
func number(n json.Number) *float64 {
	if n == "" {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return ingest.OptFloat(ingest.FiniteFloat(f))
}

func (c *Client) get(ctx context.Context, path string, params url.Values, timeout time.Duration) (*AggsResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	params.Set("apiKey", c.apiKey)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Debugf("polygon GET %s", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out AggsResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &out, nil
}
