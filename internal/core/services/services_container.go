package services

import (
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized
// dependencies. The queue client is constructed before the services because the
// dividend engine enqueues through it; the queue's dispatcher receives the
// finished container afterwards.
func NewServiceContainer(
	cfg *config.Config,
	repos *portsrepo.RepositoryProvider,
	fetcher portssvc.BankTransactionFetcher,
	notifier portssvc.DividendNotifier,
	queue portssvc.QueueSvc,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{
		Queue:    queue,
		Notifier: notifier,
	}

	container.Revenue = NewRevenueCalculationService(
		repos.CompanyRepo,
		repos.RevenueRepo,
		repos.BankTxnRepo,
		fetcher,
	)

	container.Dividend = NewDividendDistributionService(
		repos,
		notifier,
		queue,
		cfg.PayoutBatchSize,
		cfg.DecomposeThreshold,
	)

	container.Wallet = NewWalletService(repos, cfg.TreasuryUserID)

	return container
}
