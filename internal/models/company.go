package models

import "github.com/shopspring/decimal"

// Company is the persistence representation of a listed company.
type Company struct {
	CompanyID          string          `json:"companyID"`
	Name               string          `json:"name"`
	TotalShares        decimal.Decimal `json:"totalShares"`
	BankAccountID      *string         `json:"bankAccountID"`
	VerificationStatus string          `json:"verificationStatus"`
	ListingStatus      string          `json:"listingStatus"`
	AuditFields
}
