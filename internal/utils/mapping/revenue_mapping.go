package mapping

import (
	"time"

	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/clearvest/payout_engine/internal/models"
)

// ToModelRevenueReport converts a domain RevenueReport to a model RevenueReport.
func ToModelRevenueReport(d domain.RevenueReport) models.RevenueReport {
	return models.RevenueReport{
		ReportID:           d.ReportID,
		CompanyID:          d.CompanyID,
		Month:              int(d.Month),
		Year:               d.Year,
		TotalCredits:       d.TotalCredits,
		TotalDebits:        d.TotalDebits,
		NetRevenue:         d.NetRevenue,
		PlatformFee:        d.PlatformFee,
		NetProfit:          d.NetProfit,
		DividendPool:       d.DividendPool,
		Reinvestment:       d.Reinvestment,
		VerificationStatus: string(d.VerificationStatus),
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRevenueReport converts a model RevenueReport to a domain RevenueReport.
func ToDomainRevenueReport(m models.RevenueReport) domain.RevenueReport {
	return domain.RevenueReport{
		ReportID:           m.ReportID,
		CompanyID:          m.CompanyID,
		Month:              time.Month(m.Month),
		Year:               m.Year,
		TotalCredits:       m.TotalCredits,
		TotalDebits:        m.TotalDebits,
		NetRevenue:         m.NetRevenue,
		PlatformFee:        m.PlatformFee,
		NetProfit:          m.NetProfit,
		DividendPool:       m.DividendPool,
		Reinvestment:       m.Reinvestment,
		VerificationStatus: domain.ReportVerificationStatus(m.VerificationStatus),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBankTransaction converts a domain BankTransaction to its model.
func ToModelBankTransaction(d domain.BankTransaction) models.BankTransaction {
	return models.BankTransaction{
		TransactionID: d.TransactionID,
		CompanyID:     d.CompanyID,
		Date:          d.Date,
		Type:          string(d.Type),
		Amount:        d.Amount,
		BalanceAfter:  d.BalanceAfter,
		Description:   d.Description,
		BankReference: d.BankReference,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankTransaction converts a model BankTransaction to its domain form.
func ToDomainBankTransaction(m models.BankTransaction) domain.BankTransaction {
	return domain.BankTransaction{
		TransactionID: m.TransactionID,
		CompanyID:     m.CompanyID,
		Date:          m.Date,
		Type:          domain.BankTransactionType(m.Type),
		Amount:        m.Amount,
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		BankReference: m.BankReference,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
