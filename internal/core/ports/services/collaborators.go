package services

import (
	"context"
	"time"

	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BankTransactionFetcher is the bank integration, consumed only as a
// fetch-transactions capability. Transient network failures must satisfy
// errors.Is(err, apperrors.ErrTransient) so the retry helper retries them;
// permanent auth failures must not.
type BankTransactionFetcher interface {
	FetchTransactions(ctx context.Context, bankAccountID string, from, to time.Time) ([]domain.BankTransaction, error)
}

// DividendNotifier delivers shareholder notifications. Best-effort: failures
// are logged per user and never roll back financial state.
type DividendNotifier interface {
	SendDividendNotification(ctx context.Context, userID, companyName string, amount, sharesOwned decimal.Decimal) error
}
