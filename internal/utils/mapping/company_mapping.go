package mapping

import (
	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/clearvest/payout_engine/internal/models"
)

// ToDomainCompany converts a model Company to a domain Company.
func ToDomainCompany(m models.Company) domain.Company {
	return domain.Company{
		CompanyID:          m.CompanyID,
		Name:               m.Name,
		TotalShares:        m.TotalShares,
		BankAccountID:      m.BankAccountID,
		VerificationStatus: domain.CompanyVerificationStatus(m.VerificationStatus),
		ListingStatus:      domain.ListingStatus(m.ListingStatus),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCompany converts a domain Company to a model Company.
func ToModelCompany(d domain.Company) models.Company {
	return models.Company{
		CompanyID:          d.CompanyID,
		Name:               d.Name,
		TotalShares:        d.TotalShares,
		BankAccountID:      d.BankAccountID,
		VerificationStatus: string(d.VerificationStatus),
		ListingStatus:      string(d.ListingStatus),
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}
