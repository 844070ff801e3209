package services

import (
	"context"

	"github.com/clearvest/payout_engine/internal/core/domain"
)

// WalletSvc executes the money-movement jobs the queue carries besides
// dividend payouts. Every operation is transactional and idempotent at the
// storage layer where a natural key exists.
type WalletSvc interface {
	// Deposit credits a user wallet from an external rail.
	Deposit(ctx context.Context, p domain.DepositPayload) error

	// Withdraw debits a user wallet toward an external rail.
	Withdraw(ctx context.Context, p domain.WithdrawalPayload) error

	// CollectFee moves a platform fee into the treasury wallet.
	CollectFee(ctx context.Context, p domain.FeePayload) error

	// SettleTrade atomically moves shares and cash between two users.
	SettleTrade(ctx context.Context, p domain.TradeSettlementPayload) error
}
