// Package notify delivers shareholder notifications. The current transport is
// the structured log; swapping in email or push only means implementing the
// same contract.
package notify

import (
	"context"
	"log/slog"

	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// LogNotifier writes dividend notifications to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

var _ portssvc.DividendNotifier = (*LogNotifier)(nil)

// SendDividendNotification records the notification.
func (n *LogNotifier) SendDividendNotification(ctx context.Context, userID, companyName string, amount, sharesOwned decimal.Decimal) error {
	n.logger.InfoContext(ctx, "Dividend notification",
		slog.String("user_id", userID),
		slog.String("company", companyName),
		slog.String("amount", amount.String()),
		slog.String("shares_owned", sharesOwned.String()),
	)
	return nil
}
