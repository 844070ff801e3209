package domain

import "github.com/shopspring/decimal"

// Wallet is a user's cash balance on the platform. The only mutation this core
// performs is an atomic credit inside a storage transaction.
type Wallet struct {
	WalletID string          `json:"walletID"`
	UserID   string          `json:"userID"`
	Balance  decimal.Decimal `json:"balance"`
	AuditFields
}
