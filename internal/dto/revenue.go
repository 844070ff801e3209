package dto

import "github.com/shopspring/decimal"

// CalculateRevenueRequest selects the target period for a manual run.
// Zero values mean "previous calendar month".
type CalculateRevenueRequest struct {
	Month int `json:"month" binding:"omitempty,min=1,max=12"`
	Year  int `json:"year" binding:"omitempty,min=2000,max=2200"`
}

// CompanyRunStatus classifies the outcome for one company in a revenue run.
type CompanyRunStatus string

const (
	CompanyRunSucceeded CompanyRunStatus = "SUCCEEDED"
	CompanyRunSkipped   CompanyRunStatus = "SKIPPED"
	CompanyRunFailed    CompanyRunStatus = "FAILED"
)

// CompanyRunResult is the per-company outcome of a revenue run. Failures are
// isolated here; they never abort sibling companies.
type CompanyRunResult struct {
	CompanyID     string           `json:"companyID"`
	CompanyName   string           `json:"companyName"`
	Status        CompanyRunStatus `json:"status"`
	Reason        string           `json:"reason,omitempty"`
	ReportID      string           `json:"reportID,omitempty"`
	FetchAttempts int              `json:"fetchAttempts,omitempty"`
	NetRevenue    *decimal.Decimal `json:"netRevenue,omitempty"`
}

// RevenueRunResult aggregates a whole monthly revenue run; it is the unit
// reported back to the scheduler.
type RevenueRunResult struct {
	Period    string             `json:"period"`
	Processed int                `json:"processed"`
	Succeeded int                `json:"succeeded"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	Companies []CompanyRunResult `json:"companies"`
}

// Add records one company outcome and maintains the aggregate counters.
func (r *RevenueRunResult) Add(c CompanyRunResult) {
	r.Processed++
	switch c.Status {
	case CompanyRunSucceeded:
		r.Succeeded++
	case CompanyRunSkipped:
		r.Skipped++
	case CompanyRunFailed:
		r.Failed++
	}
	r.Companies = append(r.Companies, c)
}
