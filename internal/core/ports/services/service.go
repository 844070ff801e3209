package services

// ServiceContainer bundles every service port for injection into handlers,
// the scheduler and the queue dispatcher.
type ServiceContainer struct {
	Revenue  RevenueCalculationSvc
	Dividend DividendDistributionSvc
	Wallet   WalletSvc
	Queue    QueueSvc
	Notifier DividendNotifier
}
