package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is the persistence representation of a raw bank ledger line.
// bank_reference carries a unique constraint so repeated fetches are no-ops.
type BankTransaction struct {
	TransactionID string          `json:"transactionID"`
	CompanyID     string          `json:"companyID"`
	Date          time.Time       `json:"date"`
	Type          string          `json:"type"` // CREDIT or DEBIT
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Description   string          `json:"description"`
	BankReference string          `json:"bankReference"`
	AuditFields
}
