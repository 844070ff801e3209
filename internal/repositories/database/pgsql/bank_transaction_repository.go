package pgsql

import (
	"context"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	"github.com/clearvest/payout_engine/internal/models"
	"github.com/clearvest/payout_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBankTransactionRepository struct {
	BaseRepository
}

// NewBankTransactionRepository creates a new repository for raw bank ledger lines.
func NewBankTransactionRepository(pool *pgxpool.Pool) *PgxBankTransactionRepository {
	return &PgxBankTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankTransactionRepository = (*PgxBankTransactionRepository)(nil)

// SaveBankTransactions persists fetched transactions idempotently. Duplicate
// bank references hit ON CONFLICT DO NOTHING, so repeated fetches are safe.
// Returns the number of rows actually inserted.
func (r *PgxBankTransactionRepository) SaveBankTransactions(ctx context.Context, txns []domain.BankTransaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO bank_transactions (
			transaction_id, company_id, txn_date, txn_type, amount,
			balance_after, description, bank_reference, created_at, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (bank_reference) DO NOTHING;
	`

	batch := &pgx.Batch{}
	for _, txn := range txns {
		m := mapping.ToModelBankTransaction(txn)
		batch.Queue(query,
			m.TransactionID,
			m.CompanyID,
			m.Date,
			m.Type,
			m.Amount,
			m.BalanceAfter,
			m.Description,
			m.BankReference,
			m.CreatedAt,
			m.LastUpdatedAt,
		)
	}

	br := r.Pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range txns {
		tag, err := br.Exec()
		if err != nil {
			return inserted, apperrors.NewAppError(500, "failed to insert bank transactions", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// ListBankTransactions retrieves a company's transactions within the period,
// ordered by date.
func (r *PgxBankTransactionRepository) ListBankTransactions(ctx context.Context, companyID string, period domain.Period) ([]domain.BankTransaction, error) {
	from, to := period.Bounds()
	query := `
		SELECT transaction_id, company_id, txn_date, txn_type, amount,
		       balance_after, description, bank_reference, created_at, last_updated_at
		FROM bank_transactions
		WHERE company_id = $1 AND txn_date >= $2 AND txn_date < $3
		ORDER BY txn_date, bank_reference;
	`

	rows, err := r.Pool.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list bank transactions for company "+companyID, err)
	}
	defer rows.Close()

	var txns []domain.BankTransaction
	for rows.Next() {
		var m models.BankTransaction
		err := rows.Scan(
			&m.TransactionID,
			&m.CompanyID,
			&m.Date,
			&m.Type,
			&m.Amount,
			&m.BalanceAfter,
			&m.Description,
			&m.BankReference,
			&m.CreatedAt,
			&m.LastUpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bank transaction row", err)
		}
		txns = append(txns, mapping.ToDomainBankTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate bank transaction rows", err)
	}
	return txns, nil
}
