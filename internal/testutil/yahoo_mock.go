package testutil

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/arniesaha/portfolio-tracker/internal/yahoo"
)

// MockMarketClient is a canned implementation of the market data client
// for testing. It returns predefined data instead of making API calls.
type MockMarketClient struct {
	// MockResponse is the response to return from query methods
	MockResponse yahoo.Response
	// MockError is the error to return from query methods
	MockError error
	// QueryCount tracks how many times a query method was called
	QueryCount int
}

// NewMockMarketClient creates a mock client with default test data:
// 5 days of historical prices ending yesterday.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		MockResponse: CreateMockChartResponse("TEST", 5),
	}
}

// QueryFiveDaySymbol mocks the 5-day symbol query.
// It returns the configured MockResponse and MockError.
func (m *MockMarketClient) QueryFiveDaySymbol(_ string) (yahoo.Response, error) {
	m.QueryCount++
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

// QuerySymbolByDateRange mocks the date range query.
// It returns the configured MockResponse and MockError.
func (m *MockMarketClient) QuerySymbolByDateRange(_ string, _, _ time.Time) (yahoo.Response, error) {
	m.QueryCount++
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

// ParseChart delegates to the real ParseChart method since it's pure logic with no side effects.
func (m *MockMarketClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	client := yahoo.NewFinanceClient(zerolog.Nop())
	return client.ParseChart(yahooResult)
}

// WithError configures the mock to return the specified error.
func (m *MockMarketClient) WithError(err error) *MockMarketClient {
	m.MockError = err
	return m
}

// WithResponse configures the mock to return the specified response.
func (m *MockMarketClient) WithResponse(resp yahoo.Response) *MockMarketClient {
	m.MockResponse = resp
	return m
}

// CreateMockChartResponse creates a chart API response with `days` days of
// generated price data ending yesterday. Day i closes at 100.25 + i*0.5.
func CreateMockChartResponse(symbol string, days int) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	var dates []time.Time
	for i := 0; i < days; i++ {
		dates = append(dates, yesterday.AddDate(0, 0, -days+i+1))
	}
	return CreateMockChartResponseForDates(symbol, dates)
}

// CreateMockChartResponseForDates creates a chart API response with one
// generated daily bar per given date.
func CreateMockChartResponseForDates(symbol string, dates []time.Time) yahoo.Response {
	timestamps := make([]int64, len(dates))
	opens := make([]float64, len(dates))
	highs := make([]float64, len(dates))
	lows := make([]float64, len(dates))
	closes := make([]float64, len(dates))
	volumes := make([]int64, len(dates))

	for i, date := range dates {
		timestamps[i] = date.Unix()

		dayPrice := 100.0 + float64(i)*0.5
		opens[i] = dayPrice
		highs[i] = dayPrice + 1.0
		lows[i] = dayPrice - 0.5
		closes[i] = dayPrice + 0.25
		volumes[i] = int64(1000000 + i*10000)
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:       symbol,
						Currency:     "USD",
						ExchangeName: "NMS",
						LongName:     "Test Instrument Inc.",
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}
