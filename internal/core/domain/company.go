package domain

import "github.com/shopspring/decimal"

// CompanyVerificationStatus captures the review state of a listed company.
type CompanyVerificationStatus string

const (
	CompanyPending  CompanyVerificationStatus = "PENDING"
	CompanyApproved CompanyVerificationStatus = "APPROVED"
	CompanyRejected CompanyVerificationStatus = "REJECTED"
)

// ListingStatus captures whether a company is tradable on the platform.
type ListingStatus string

const (
	ListingActive    ListingStatus = "ACTIVE"
	ListingSuspended ListingStatus = "SUSPENDED"
	ListingDelisted  ListingStatus = "DELISTED"
)

// Company is a listed business whose bank activity feeds monthly revenue reports.
// TotalShares is immutable while a report for the company is being computed.
type Company struct {
	CompanyID          string                    `json:"companyID"`
	Name               string                    `json:"name"`
	TotalShares        decimal.Decimal           `json:"totalShares"`
	BankAccountID      *string                   `json:"bankAccountID,omitempty"`
	VerificationStatus CompanyVerificationStatus `json:"verificationStatus"`
	ListingStatus      ListingStatus             `json:"listingStatus"`
	AuditFields
}

// HasBankConnection reports whether the company can serve transaction fetches.
func (c Company) HasBankConnection() bool {
	return c.BankAccountID != nil && *c.BankAccountID != ""
}

// EligibleForRevenueRun reports whether the company is included in a monthly run.
func (c Company) EligibleForRevenueRun() bool {
	return c.ListingStatus == ListingActive && c.VerificationStatus == CompanyApproved
}
