package models

import "github.com/shopspring/decimal"

// RevenueReport is the persistence representation of a monthly revenue report.
// Unique on (company_id, month, year).
type RevenueReport struct {
	ReportID           string          `json:"reportID"`
	CompanyID          string          `json:"companyID"`
	Month              int             `json:"month"`
	Year               int             `json:"year"`
	TotalCredits       decimal.Decimal `json:"totalCredits"`
	TotalDebits        decimal.Decimal `json:"totalDebits"`
	NetRevenue         decimal.Decimal `json:"netRevenue"`
	PlatformFee        decimal.Decimal `json:"platformFee"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	DividendPool       decimal.Decimal `json:"dividendPool"`
	Reinvestment       decimal.Decimal `json:"reinvestment"`
	VerificationStatus string          `json:"verificationStatus"`
	AuditFields
}
