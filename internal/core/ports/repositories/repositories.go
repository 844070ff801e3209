package repositories

// RepositoryProvider bundles every repository implementation for injection
// into the service container.
type RepositoryProvider struct {
	CompanyRepo  CompanyReader
	RevenueRepo  RevenueReportRepository
	BankTxnRepo  BankTransactionRepository
	DividendRepo DividendRepositoryFacade
	HoldingRepo  HoldingRepository
	WalletRepo   WalletRepository
	JobRepo      JobRepository
	LockRepo     LockRepository
	TxManager    TransactionManager
}
