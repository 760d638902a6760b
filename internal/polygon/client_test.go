package polygon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestGetDailyBars(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ticker":"AAPL","status":"OK","results":[
			{"o":180.1,"h":182.5,"l":179.8,"c":181.9,"v":70790813,"vw":181.2,"n":612345,"t":1704171600000},
			{"o":181.9,"h":183,"l":180,"c":182.4,"v":7.0790813e+07,"t":1704258000000}
		]}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)
	bars, err := client.GetDailyBars(context.Background(), "aapl", mustDate(t, "2024-01-02"), mustDate(t, "2024-01-03"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotPath != "/v2/aggs/ticker/AAPL/range/1/day/2024-01-02/2024-01-03" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotQuery != "adjusted=true&apiKey=test-key&limit=50000&sort=asc" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}

	first := bars[0]
	if first.Ticker != "AAPL" || !first.Date.Equal(mustDate(t, "2024-01-02")) {
		t.Errorf("unexpected first bar %s %s", first.Ticker, first.Date)
	}
	if first.Close == nil || *first.Close != 181.9 {
		t.Errorf("expected close 181.9, got %v", first.Close)
	}
	if first.Volume == nil || *first.Volume != 70790813 {
		t.Errorf("expected volume 70790813, got %v", first.Volume)
	}
	if first.Trades == nil || *first.Trades != 612345 {
		t.Errorf("expected trades 612345, got %v", first.Trades)
	}

	second := bars[1]
	if second.Volume == nil || *second.Volume != 70790813 {
		t.Errorf("expected exponent volume to parse, got %v", second.Volume)
	}
	if second.VWAP != nil || second.Trades != nil {
		t.Errorf("expected absent fields to be nil, got vwap=%v trades=%v", second.VWAP, second.Trades)
	}
}

func TestGetGroupedDaily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/aggs/grouped/locale/us/market/stocks/2024-03-01" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"OK","results":[
			{"T":"msft","o":410,"h":415,"l":409,"c":414,"v":1000,"t":1709326800000},
			{"T":"","c":1},
			{"T":"BRK.B","c":405.5}
		]}`))
	}))
	defer server.Close()

	day := mustDate(t, "2024-03-01")
	bars, err := NewClientWithBaseURL("k", server.URL).GetGroupedDaily(context.Background(), day)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars (blank ticker dropped), got %d", len(bars))
	}
	if bars[0].Ticker != "MSFT" || bars[1].Ticker != "BRK.B" {
		t.Errorf("unexpected tickers %s, %s", bars[0].Ticker, bars[1].Ticker)
	}
	for _, b := range bars {
		if !b.Date.Equal(day) {
			t.Errorf("expected date %s, got %s", day, b.Date)
		}
	}
}

func TestGetGroupedDaily_Holiday(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","resultsCount":0}`))
	}))
	defer server.Close()

	bars, err := NewClientWithBaseURL("k", server.URL).GetGroupedDaily(context.Background(), mustDate(t, "2024-12-25"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("expected no bars, got %d", len(bars))
	}
}

func TestClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":"NOT_AUTHORIZED"}`))
	}))
	defer server.Close()

	_, err := NewClientWithBaseURL("bad", server.URL).GetDailyBars(context.Background(), "AAPL", time.Now(), time.Now())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", statusErr.StatusCode)
	}
}

func TestClient_MissingAPIKey(t *testing.T) {
	_, err := NewClient("").GetGroupedDaily(context.Background(), time.Now())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}
