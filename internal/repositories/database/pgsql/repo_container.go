package pgsql

import (
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgsql repository over one shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		CompanyRepo:  NewCompanyRepository(pool),
		RevenueRepo:  NewRevenueReportRepository(pool),
		BankTxnRepo:  NewBankTransactionRepository(pool),
		DividendRepo: NewDividendRepository(pool),
		HoldingRepo:  NewHoldingRepository(pool),
		WalletRepo:   NewWalletRepository(pool),
		JobRepo:      NewJobRepository(pool),
		LockRepo:     NewLockRepository(pool),
		TxManager:    &BaseRepository{Pool: pool},
	}
}
