package models

import "github.com/shopspring/decimal"

// Dividend is the persistence representation of a per-report distribution.
// Unique on revenue_report_id.
type Dividend struct {
	DividendID      string          `json:"dividendID"`
	RevenueReportID string          `json:"revenueReportID"`
	CompanyID       string          `json:"companyID"`
	TotalPool       decimal.Decimal `json:"totalPool"`
	EligibleShares  decimal.Decimal `json:"eligibleShares"`
	AmountPerShare  decimal.Decimal `json:"amountPerShare"`
	Status          string          `json:"status"`
	AuditFields
}

// DividendPayout is the persistence representation of one shareholder's credit.
// Unique on (dividend_id, user_id).
type DividendPayout struct {
	PayoutID    string          `json:"payoutID"`
	DividendID  string          `json:"dividendID"`
	UserID      string          `json:"userID"`
	SharesOwned decimal.Decimal `json:"sharesOwned"`
	Amount      decimal.Decimal `json:"amount"`
	AuditFields
}

// StockHolding is the persistence representation of a (user, company) position.
type StockHolding struct {
	HoldingID            string          `json:"holdingID"`
	UserID               string          `json:"userID"`
	CompanyID            string          `json:"companyID"`
	SharesOwned          decimal.Decimal `json:"sharesOwned"`
	TotalDividendsEarned decimal.Decimal `json:"totalDividendsEarned"`
	AuditFields
}
