package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
)

// walletService executes the money-movement jobs outside dividend payouts.
type walletService struct {
	BaseService
	walletRepo     portsrepo.WalletRepository
	holdingRepo    portsrepo.HoldingRepository
	txManager      portsrepo.TransactionManager
	treasuryUserID string
}

// NewWalletService creates the wallet movement service. treasuryUserID is the
// platform account that fee collections credit.
func NewWalletService(repos *portsrepo.RepositoryProvider, treasuryUserID string) portssvc.WalletSvc {
	return &walletService{
		walletRepo:     repos.WalletRepo,
		holdingRepo:    repos.HoldingRepo,
		txManager:      repos.TxManager,
		treasuryUserID: treasuryUserID,
	}
}

var _ portssvc.WalletSvc = (*walletService)(nil)

// Deposit credits a user wallet from an external rail.
func (s *walletService) Deposit(ctx context.Context, p domain.DepositPayload) error {
	if !p.Amount.IsPositive() {
		return apperrors.NewAppError(422, "Deposit amount must be positive", apperrors.ErrValidation)
	}
	now := time.Now().UTC()
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		return s.walletRepo.CreditWalletInTx(ctx, tx, p.UserID, p.Amount, now)
	})
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Deposit credited",
		slog.String("user_id", p.UserID),
		slog.String("amount", p.Amount.String()),
		slog.String("reference", p.Reference),
	)
	return nil
}

// Withdraw debits a user wallet toward an external rail.
func (s *walletService) Withdraw(ctx context.Context, p domain.WithdrawalPayload) error {
	if !p.Amount.IsPositive() {
		return apperrors.NewAppError(422, "Withdrawal amount must be positive", apperrors.ErrValidation)
	}
	now := time.Now().UTC()
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		return s.walletRepo.DebitWalletInTx(ctx, tx, p.UserID, p.Amount, now)
	})
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Withdrawal debited",
		slog.String("user_id", p.UserID),
		slog.String("amount", p.Amount.String()),
		slog.String("reference", p.Reference),
	)
	return nil
}

// CollectFee moves a platform fee into the treasury wallet.
func (s *walletService) CollectFee(ctx context.Context, p domain.FeePayload) error {
	if s.treasuryUserID == "" {
		return apperrors.NewAppError(500, "Treasury account not configured", nil)
	}
	if !p.Amount.IsPositive() {
		// A zero or negative fee month has nothing to collect.
		return nil
	}
	now := time.Now().UTC()
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		return s.walletRepo.CreditWalletInTx(ctx, tx, s.treasuryUserID, p.Amount, now)
	})
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Platform fee collected",
		slog.String("company_id", p.CompanyID),
		slog.String("report_id", p.RevenueReportID),
		slog.String("amount", p.Amount.String()),
	)
	return nil
}

// SettleTrade atomically moves cash buyer to seller and shares seller to buyer.
// Either all four effects land or none do.
func (s *walletService) SettleTrade(ctx context.Context, p domain.TradeSettlementPayload) error {
	if !p.Shares.IsPositive() || p.Price.IsNegative() {
		return apperrors.NewAppError(422, "Invalid trade settlement terms", apperrors.ErrValidation)
	}
	total := p.Price.Mul(p.Shares)
	now := time.Now().UTC()

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		// Row-lock the seller's holding first so a concurrent settlement of the
		// same position cannot oversell.
		holding, err := s.holdingRepo.FindHoldingInTx(ctx, tx, p.SellerID, p.CompanyID)
		if err != nil {
			return err
		}
		if holding.SharesOwned.LessThan(p.Shares) {
			return apperrors.NewAppError(422, "Seller holds insufficient shares", apperrors.ErrValidation)
		}
		if err := s.walletRepo.DebitWalletInTx(ctx, tx, p.BuyerID, total, now); err != nil {
			return err
		}
		if err := s.walletRepo.CreditWalletInTx(ctx, tx, p.SellerID, total, now); err != nil {
			return err
		}
		if err := s.holdingRepo.AdjustSharesInTx(ctx, tx, p.SellerID, p.CompanyID, p.Shares.Neg(), now); err != nil {
			return err
		}
		return s.holdingRepo.AdjustSharesInTx(ctx, tx, p.BuyerID, p.CompanyID, p.Shares, now)
	})
	if err != nil {
		return err
	}

	s.LogInfo(ctx, "Trade settled",
		slog.String("trade_id", p.TradeID),
		slog.String("buyer_id", p.BuyerID),
		slog.String("seller_id", p.SellerID),
		slog.String("shares", p.Shares.String()),
		slog.String("total", total.String()),
	)
	return nil
}
