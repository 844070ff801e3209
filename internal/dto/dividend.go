package dto

import (
	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DistributeDividendsRequest selects the target period for a manual run.
// Zero values mean "previous calendar month".
type DistributeDividendsRequest struct {
	Month int `json:"month" binding:"omitempty,min=1,max=12"`
	Year  int `json:"year" binding:"omitempty,min=2000,max=2200"`
}

// DividendDetails is the read model for one report's distribution: the
// dividend row plus every payout recorded under it.
type DividendDetails struct {
	Dividend domain.Dividend         `json:"dividend"`
	Payouts  []domain.DividendPayout `json:"payouts"`
}

// ReportDistributionStatus classifies the outcome for one revenue report.
type ReportDistributionStatus string

const (
	ReportDistributed ReportDistributionStatus = "DISTRIBUTED"
	ReportEnqueued    ReportDistributionStatus = "ENQUEUED"
	ReportSkipped     ReportDistributionStatus = "SKIPPED"
	ReportFailed      ReportDistributionStatus = "FAILED"
)

// ReportDistributionResult is the per-report outcome of a distribution run.
type ReportDistributionResult struct {
	RevenueReportID string                   `json:"revenueReportID"`
	CompanyID       string                   `json:"companyID"`
	DividendID      string                   `json:"dividendID,omitempty"`
	DistributionID  string                   `json:"distributionID,omitempty"`
	Status          ReportDistributionStatus `json:"status"`
	Reason          string                   `json:"reason,omitempty"`
	AmountPerShare  decimal.Decimal          `json:"amountPerShare"`
	ShareholderCnt  int                      `json:"shareholderCount"`
	TotalPaid       decimal.Decimal          `json:"totalPaid"`
}

// DistributionRunResult aggregates a whole monthly distribution run.
type DistributionRunResult struct {
	Period    string                     `json:"period"`
	Processed int                        `json:"processed"`
	Succeeded int                        `json:"succeeded"`
	Skipped   int                        `json:"skipped"`
	Failed    int                        `json:"failed"`
	Reports   []ReportDistributionResult `json:"reports"`
}

// Add records one report outcome and maintains the aggregate counters.
func (r *DistributionRunResult) Add(rep ReportDistributionResult) {
	r.Processed++
	switch rep.Status {
	case ReportDistributed, ReportEnqueued:
		r.Succeeded++
	case ReportSkipped:
		r.Skipped++
	case ReportFailed:
		r.Failed++
	}
	r.Reports = append(r.Reports, rep)
}
