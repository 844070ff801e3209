package queue

import (
	"context"
	"fmt"

	"github.com/clearvest/payout_engine/internal/core/domain"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
)

// Dispatcher routes a decoded payload to the code that executes it.
type Dispatcher interface {
	Handle(ctx context.Context, payload domain.JobPayload) error
}

// DistributionFinalizer settles a distribution's terminal status. The worker
// invokes it after a distribution-tagged job reaches COMPLETED or FAILED, so
// the drain check never counts the triggering job as still pending.
type DistributionFinalizer interface {
	FinalizeDistribution(ctx context.Context, distributionID string) error
}

// ServiceDispatcher executes jobs against the service container. The type
// switch is exhaustive over the payload variants; an unmatched payload is a
// programming error surfaced as a job failure.
type ServiceDispatcher struct {
	services *portssvc.ServiceContainer
}

// NewServiceDispatcher creates the production dispatch table.
func NewServiceDispatcher(services *portssvc.ServiceContainer) *ServiceDispatcher {
	return &ServiceDispatcher{services: services}
}

var (
	_ Dispatcher            = (*ServiceDispatcher)(nil)
	_ DistributionFinalizer = (*ServiceDispatcher)(nil)
)

// FinalizeDistribution flips a decomposed dividend to its terminal status once
// its payout jobs have drained.
func (d *ServiceDispatcher) FinalizeDistribution(ctx context.Context, distributionID string) error {
	return d.services.Dividend.FinalizeDistribution(ctx, distributionID)
}

// Handle executes one job payload.
func (d *ServiceDispatcher) Handle(ctx context.Context, payload domain.JobPayload) error {
	switch p := payload.(type) {
	case domain.DistributionPayload:
		_, err := d.services.Dividend.DistributeForReport(ctx, p.RevenueReportID)
		return err

	case domain.PayoutPayload:
		return d.services.Dividend.PayShareholder(ctx, p)

	case domain.NotificationPayload:
		if d.services.Notifier == nil {
			return nil
		}
		return d.services.Notifier.SendDividendNotification(ctx, p.UserID, p.CompanyName, p.Amount, p.SharesOwned)

	case domain.DepositPayload:
		return d.services.Wallet.Deposit(ctx, p)

	case domain.WithdrawalPayload:
		return d.services.Wallet.Withdraw(ctx, p)

	case domain.FeePayload:
		return d.services.Wallet.CollectFee(ctx, p)

	case domain.TradeSettlementPayload:
		return d.services.Wallet.SettleTrade(ctx, p)

	default:
		return fmt.Errorf("no handler for job type %s", payload.JobType())
	}
}
