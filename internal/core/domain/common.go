package domain

import (
	"fmt"
	"time"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// Period identifies a calendar month, the unit of all scheduled financial runs.
type Period struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

// NewPeriod validates and builds a Period.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if year < 2000 || year > 2200 {
		return Period{}, fmt.Errorf("year %d is out of range", year)
	}
	return Period{Month: time.Month(month), Year: year}, nil
}

// PreviousPeriod returns the calendar month before the given instant.
// A trigger firing on the 1st of a month therefore targets the month that just closed.
func PreviousPeriod(now time.Time) Period {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := firstOfMonth.AddDate(0, 0, -1)
	return Period{Month: prev.Month(), Year: prev.Year()}
}

// Bounds returns the half-open interval [start, end) covering the period in UTC.
func (p Period) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
