package services_test

import (
	"context"
	"testing"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WalletServiceTestSuite struct {
	suite.Suite
	mockWalletRepo  *MockWalletRepository
	mockHoldingRepo *MockHoldingRepository
	txManager       *FakeTxManager
	treasuryUserID  string
	service         portssvc.WalletSvc
}

func (suite *WalletServiceTestSuite) SetupTest() {
	suite.mockWalletRepo = new(MockWalletRepository)
	suite.mockHoldingRepo = new(MockHoldingRepository)
	suite.txManager = &FakeTxManager{}
	suite.treasuryUserID = uuid.NewString()

	repos := &portsrepo.RepositoryProvider{
		WalletRepo:  suite.mockWalletRepo,
		HoldingRepo: suite.mockHoldingRepo,
		TxManager:   suite.txManager,
	}
	suite.service = services.NewWalletService(repos, suite.treasuryUserID)
}

func (suite *WalletServiceTestSuite) TestDeposit() {
	ctx := context.Background()
	userID := uuid.NewString()
	amount := mustDecimal("250.00")

	suite.mockWalletRepo.On("CreditWalletInTx", ctx, mock.Anything, userID, amount, mock.Anything).Return(nil).Once()

	err := suite.service.Deposit(ctx, domain.DepositPayload{UserID: userID, Amount: amount, Reference: "dep-1"})

	suite.Require().NoError(err)
	suite.Equal(1, suite.txManager.Began)
	suite.mockWalletRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestDeposit_RejectsNonPositiveAmount() {
	ctx := context.Background()

	err := suite.service.Deposit(ctx, domain.DepositPayload{UserID: uuid.NewString(), Amount: mustDecimal("0")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Zero(suite.txManager.Began)
}

func (suite *WalletServiceTestSuite) TestWithdraw() {
	ctx := context.Background()
	userID := uuid.NewString()
	amount := mustDecimal("75.50")

	suite.mockWalletRepo.On("DebitWalletInTx", ctx, mock.Anything, userID, amount, mock.Anything).Return(nil).Once()

	err := suite.service.Withdraw(ctx, domain.WithdrawalPayload{UserID: userID, Amount: amount, Reference: "wd-1"})

	suite.Require().NoError(err)
	suite.mockWalletRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestCollectFee_CreditsTreasury() {
	ctx := context.Background()
	amount := mustDecimal("1500.00")

	suite.mockWalletRepo.On("CreditWalletInTx", ctx, mock.Anything, suite.treasuryUserID, amount, mock.Anything).Return(nil).Once()

	err := suite.service.CollectFee(ctx, domain.FeePayload{
		CompanyID:       uuid.NewString(),
		RevenueReportID: uuid.NewString(),
		Amount:          amount,
	})

	suite.Require().NoError(err)
	suite.mockWalletRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestCollectFee_ZeroAmountIsNoOp() {
	ctx := context.Background()

	err := suite.service.CollectFee(ctx, domain.FeePayload{Amount: mustDecimal("0")})

	suite.Require().NoError(err)
	suite.Zero(suite.txManager.Began)
}

func (suite *WalletServiceTestSuite) TestCollectFee_RequiresTreasuryAccount() {
	ctx := context.Background()
	repos := &portsrepo.RepositoryProvider{
		WalletRepo:  suite.mockWalletRepo,
		HoldingRepo: suite.mockHoldingRepo,
		TxManager:   suite.txManager,
	}
	service := services.NewWalletService(repos, "")

	err := service.CollectFee(ctx, domain.FeePayload{Amount: mustDecimal("10.00")})

	suite.Require().Error(err)
}

func (suite *WalletServiceTestSuite) TestSettleTrade() {
	ctx := context.Background()
	payload := domain.TradeSettlementPayload{
		TradeID:   uuid.NewString(),
		CompanyID: uuid.NewString(),
		BuyerID:   uuid.NewString(),
		SellerID:  uuid.NewString(),
		Shares:    mustDecimal("40"),
		Price:     mustDecimal("2.50"),
	}
	total := mustDecimal("100.00")
	sellerHolding := &domain.StockHolding{
		HoldingID:   uuid.NewString(),
		UserID:      payload.SellerID,
		CompanyID:   payload.CompanyID,
		SharesOwned: mustDecimal("100"),
	}

	suite.mockHoldingRepo.On("FindHoldingInTx", ctx, mock.Anything, payload.SellerID, payload.CompanyID).
		Return(sellerHolding, nil).Once()
	suite.mockWalletRepo.On("DebitWalletInTx", ctx, mock.Anything, payload.BuyerID, total, mock.Anything).Return(nil).Once()
	suite.mockWalletRepo.On("CreditWalletInTx", ctx, mock.Anything, payload.SellerID, total, mock.Anything).Return(nil).Once()
	suite.mockHoldingRepo.On("AdjustSharesInTx", ctx, mock.Anything, payload.SellerID, payload.CompanyID, payload.Shares.Neg(), mock.Anything).Return(nil).Once()
	suite.mockHoldingRepo.On("AdjustSharesInTx", ctx, mock.Anything, payload.BuyerID, payload.CompanyID, payload.Shares, mock.Anything).Return(nil).Once()

	err := suite.service.SettleTrade(ctx, payload)

	suite.Require().NoError(err)
	suite.Equal(1, suite.txManager.Began)
	suite.mockWalletRepo.AssertExpectations(suite.T())
	suite.mockHoldingRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestSettleTrade_InsufficientShares() {
	ctx := context.Background()
	payload := domain.TradeSettlementPayload{
		TradeID:   uuid.NewString(),
		CompanyID: uuid.NewString(),
		BuyerID:   uuid.NewString(),
		SellerID:  uuid.NewString(),
		Shares:    mustDecimal("40"),
		Price:     mustDecimal("2.50"),
	}
	sellerHolding := &domain.StockHolding{
		HoldingID:   uuid.NewString(),
		UserID:      payload.SellerID,
		CompanyID:   payload.CompanyID,
		SharesOwned: mustDecimal("10"),
	}

	suite.mockHoldingRepo.On("FindHoldingInTx", ctx, mock.Anything, payload.SellerID, payload.CompanyID).
		Return(sellerHolding, nil).Once()

	err := suite.service.SettleTrade(ctx, payload)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockWalletRepo.AssertNotCalled(suite.T(), "DebitWalletInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WalletServiceTestSuite) TestSettleTrade_RejectsInvalidTerms() {
	ctx := context.Background()

	err := suite.service.SettleTrade(ctx, domain.TradeSettlementPayload{
		Shares: mustDecimal("0"),
		Price:  mustDecimal("1.00"),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Zero(suite.txManager.Began)
}

func TestWalletServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}
