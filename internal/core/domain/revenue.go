package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportVerificationStatus tracks the review lifecycle of a revenue report.
// Reports are created AUTO_VERIFIED; an external review workflow may move them
// to VERIFIED or REJECTED.
type ReportVerificationStatus string

const (
	ReportAutoVerified ReportVerificationStatus = "AUTO_VERIFIED"
	ReportVerified     ReportVerificationStatus = "VERIFIED"
	ReportRejected     ReportVerificationStatus = "REJECTED"
)

// RevenueReport is the monthly per-company financial summary derived from bank
// transactions. At most one report exists per (company, month, year); the
// storage-level unique constraint is the authoritative idempotency guard.
type RevenueReport struct {
	ReportID           string                   `json:"reportID"`
	CompanyID          string                   `json:"companyID"`
	Month              time.Month               `json:"month"`
	Year               int                      `json:"year"`
	TotalCredits       decimal.Decimal          `json:"totalCredits"`
	TotalDebits        decimal.Decimal          `json:"totalDebits"`
	NetRevenue         decimal.Decimal          `json:"netRevenue"`
	PlatformFee        decimal.Decimal          `json:"platformFee"`
	NetProfit          decimal.Decimal          `json:"netProfit"`
	DividendPool       decimal.Decimal          `json:"dividendPool"`
	Reinvestment       decimal.Decimal          `json:"reinvestment"`
	VerificationStatus ReportVerificationStatus `json:"verificationStatus"`
	AuditFields
}

// Period returns the calendar month the report covers.
func (r RevenueReport) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

// Distributable reports whether the report may feed a dividend distribution.
func (r RevenueReport) Distributable() bool {
	verified := r.VerificationStatus == ReportAutoVerified || r.VerificationStatus == ReportVerified
	return verified && r.DividendPool.IsPositive()
}

// BankTransactionType distinguishes inflows from outflows on the bank ledger.
type BankTransactionType string

const (
	BankCredit BankTransactionType = "CREDIT"
	BankDebit  BankTransactionType = "DEBIT"
)

// BankTransaction is a raw ledger line fetched from the company's bank.
// BankReference is the natural dedup key; repeated fetches insert-or-ignore.
type BankTransaction struct {
	TransactionID string              `json:"transactionID"`
	CompanyID     string              `json:"companyID"`
	Date          time.Time           `json:"date"`
	Type          BankTransactionType `json:"type"`
	Amount        decimal.Decimal     `json:"amount"`
	BalanceAfter  decimal.Decimal     `json:"balanceAfter"`
	Description   string              `json:"description"`
	BankReference string              `json:"bankReference"`
	AuditFields
}
