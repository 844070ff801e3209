package mapping

import (
	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/clearvest/payout_engine/internal/models"
)

// ToModelDividend converts a domain Dividend to a model Dividend.
func ToModelDividend(d domain.Dividend) models.Dividend {
	return models.Dividend{
		DividendID:      d.DividendID,
		RevenueReportID: d.RevenueReportID,
		CompanyID:       d.CompanyID,
		TotalPool:       d.TotalPool,
		EligibleShares:  d.EligibleShares,
		AmountPerShare:  d.AmountPerShare,
		Status:          string(d.Status),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDividend converts a model Dividend to a domain Dividend.
func ToDomainDividend(m models.Dividend) domain.Dividend {
	return domain.Dividend{
		DividendID:      m.DividendID,
		RevenueReportID: m.RevenueReportID,
		CompanyID:       m.CompanyID,
		TotalPool:       m.TotalPool,
		EligibleShares:  m.EligibleShares,
		AmountPerShare:  m.AmountPerShare,
		Status:          domain.DividendStatus(m.Status),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelDividendPayout converts a domain DividendPayout to its model.
func ToModelDividendPayout(d domain.DividendPayout) models.DividendPayout {
	return models.DividendPayout{
		PayoutID:    d.PayoutID,
		DividendID:  d.DividendID,
		UserID:      d.UserID,
		SharesOwned: d.SharesOwned,
		Amount:      d.Amount,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDividendPayout converts a model DividendPayout to its domain form.
func ToDomainDividendPayout(m models.DividendPayout) domain.DividendPayout {
	return domain.DividendPayout{
		PayoutID:    m.PayoutID,
		DividendID:  m.DividendID,
		UserID:      m.UserID,
		SharesOwned: m.SharesOwned,
		Amount:      m.Amount,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainStockHolding converts a model StockHolding to its domain form.
func ToDomainStockHolding(m models.StockHolding) domain.StockHolding {
	return domain.StockHolding{
		HoldingID:            m.HoldingID,
		UserID:               m.UserID,
		CompanyID:            m.CompanyID,
		SharesOwned:          m.SharesOwned,
		TotalDividendsEarned: m.TotalDividendsEarned,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainStockHoldingSlice converts a slice of model StockHoldings.
func ToDomainStockHoldingSlice(ms []models.StockHolding) []domain.StockHolding {
	ds := make([]domain.StockHolding, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainStockHolding(m)
	}
	return ds
}
