package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	baseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

	// minRequestInterval is the minimum spacing between live requests,
	// process-wide, to stay under the provider's rate limits. Under
	// concurrent invocations this is a best-effort throttle, not a hard
	// mutual-exclusion guarantee; the provider is read-only and idempotent.
	minRequestInterval = 2 * time.Second

	requestTimeout = 10 * time.Second
)

// exchangeSuffix maps an exchange identifier to the suffix Yahoo Finance
// expects on tickers listed there. US exchanges need no suffix.
var exchangeSuffix = map[string]string{
	"TSX":    ".TO", // Toronto Stock Exchange
	"TSX-V":  ".V",  // TSX Venture Exchange
	"NSE":    ".NS", // National Stock Exchange of India
	"BSE":    ".BO", // Bombay Stock Exchange
	"NASDAQ": "",
	"NYSE":   "",
}

// Ticker converts a symbol and exchange to the provider's ticker format.
//
// Examples:
//
//	Ticker("ZRE", "TSX")       // "ZRE.TO"
//	Ticker("NVDA", "NASDAQ")   // "NVDA"
//	Ticker("RELIANCE", "NSE")  // "RELIANCE.NS"
func Ticker(symbol, exchange string) string {
	return symbol + exchangeSuffix[exchange]
}

// FinanceClient fetches daily price data from the Yahoo Finance chart API.
// All requests pass through a shared rate limiter enforcing the minimum
// inter-request spacing.
type FinanceClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewFinanceClient creates a new Yahoo Finance client.
func NewFinanceClient(log zerolog.Logger) *FinanceClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "application/json")

	return &FinanceClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(minRequestInterval), 1),
		log:     log,
	}
}

// ParseChart converts a raw chart API response into a structured price chart.
// It validates that timestamp and close data are present and of matching
// lengths.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results in response")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}
	if len(result.Indicators.Quote[0].Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	quote := result.Indicators.Quote[0]
	indicators := make([]Indicators, len(result.Timestamp))
	for i, v := range result.Timestamp {
		indicators[i].Date = time.Unix(v, 0).UTC().Truncate(24 * time.Hour)
		indicators[i].PriceClose = quote.Close[i]
		// Open/high/low/volume arrays can be shorter when the provider
		// omits fields for partial trading days.
		if i < len(quote.Open) {
			indicators[i].PriceOpen = quote.Open[i]
		}
		if i < len(quote.High) {
			indicators[i].PriceHigh = quote.High[i]
		}
		if i < len(quote.Low) {
			indicators[i].PriceLow = quote.Low[i]
		}
		if i < len(quote.Volume) {
			indicators[i].Volume = quote.Volume[i]
		}
	}

	return PriceChart{
		Symbol:       result.Meta.Symbol,
		Currency:     result.Meta.Currency,
		ExchangeName: result.Meta.ExchangeName,
		LongName:     result.Meta.LongName,
		Indicators:   indicators,
	}, nil
}

// GetIndicatorForDate searches the chart for price data matching a specific
// date, comparing dates only (time components are ignored).
func (c PriceChart) GetIndicatorForDate(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, ind := range c.Indicators {
		if ind.Date.Equal(targetDay) {
			return ind, true
		}
	}
	return Indicators{}, false
}

// GetClosestIndicatorBefore returns the chart entry with the latest date on
// or before target, if any.
func (c PriceChart) GetClosestIndicatorBefore(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	var best Indicators
	var found bool
	for _, ind := range c.Indicators {
		if ind.Date.After(targetDay) {
			continue
		}
		if !found || ind.Date.After(best.Date) {
			best = ind
			found = true
		}
	}
	return best, found
}

// QueryFiveDaySymbol fetches the last 5 trading days of daily price data for
// a ticker. This is the cheapest way to obtain the latest available close.
func (c *FinanceClient) QueryFiveDaySymbol(symbol string) (Response, error) {
	return c.query(symbol, fmt.Sprintf("/%s?interval=1d&range=5d", symbol))
}

// QuerySymbolByDateRange fetches daily price data for a ticker within a
// specific date range (inclusive).
func (c *FinanceClient) QuerySymbolByDateRange(symbol string, startDate, endDate time.Time) (Response, error) {
	return c.query(symbol, fmt.Sprintf(
		"/%s?interval=1d&period1=%d&period2=%d",
		symbol,
		startDate.Unix(),
		endDate.Unix(),
	))
}

// query executes a rate-limited request against the chart API and checks for
// provider-level errors embedded in the response body.
func (c *FinanceClient) query(symbol, path string) (Response, error) {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return Response{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var response Response
	resp, err := c.client.R().SetResult(&response).Get(path)
	if err != nil {
		return Response{}, fmt.Errorf("chart request failed: %w", err)
	}
	if resp.IsError() {
		c.log.Warn().Str("symbol", symbol).Int("status", resp.StatusCode()).Msg("provider returned error status")
		return Response{}, fmt.Errorf("chart request failed with status %d", resp.StatusCode())
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s", *response.Chart.Error)
	}
	if len(response.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return response, nil
}
