package domain

import "github.com/shopspring/decimal"

// DividendStatus is the lifecycle of a per-report distribution.
type DividendStatus string

const (
	DividendPending    DividendStatus = "PENDING"
	DividendProcessing DividendStatus = "PROCESSING"
	DividendCompleted  DividendStatus = "COMPLETED"
	DividendFailed     DividendStatus = "FAILED"
)

// Dividend records the distribution of a revenue report's pool. At most one
// Dividend exists per revenue report; that unique constraint is the idempotency
// guard against double distribution.
type Dividend struct {
	DividendID      string          `json:"dividendID"`
	RevenueReportID string          `json:"revenueReportID"`
	CompanyID       string          `json:"companyID"`
	TotalPool       decimal.Decimal `json:"totalPool"`
	EligibleShares  decimal.Decimal `json:"eligibleShares"`
	AmountPerShare  decimal.Decimal `json:"amountPerShare"`
	Status          DividendStatus  `json:"status"`
	AuditFields
}

// DividendPayout is the immutable record of one shareholder's credit for one
// dividend. At most one payout exists per (dividend, user).
type DividendPayout struct {
	PayoutID    string          `json:"payoutID"`
	DividendID  string          `json:"dividendID"`
	UserID      string          `json:"userID"`
	SharesOwned decimal.Decimal `json:"sharesOwned"`
	Amount      decimal.Decimal `json:"amount"`
	AuditFields
}

// StockHolding is the per (user, company) aggregate of shares owned.
// TotalDividendsEarned is incremented additively by distributions, never overwritten.
type StockHolding struct {
	HoldingID            string          `json:"holdingID"`
	UserID               string          `json:"userID"`
	CompanyID            string          `json:"companyID"`
	SharesOwned          decimal.Decimal `json:"sharesOwned"`
	TotalDividendsEarned decimal.Decimal `json:"totalDividendsEarned"`
	AuditFields
}
