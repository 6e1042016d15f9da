package request

type CreateTransactionRequest struct {
	HoldingID     string  `json:"holdingId"`
	Symbol        string  `json:"symbol"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Quantity      float64 `json:"quantity"`
	PricePerShare float64 `json:"pricePerShare"`
	Fees          float64 `json:"fees"`
}

type BackfillRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}
