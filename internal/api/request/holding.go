package request

type CreateHoldingRequest struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	Exchange    string `json:"exchange"`
	Country     string `json:"country"`
	Currency    string `json:"currency"`
}
