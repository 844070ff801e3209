package models

import "time"

// Job is the persistence representation of a queued unit of work.
type Job struct {
	JobID          string     `json:"jobID"`
	Type           string     `json:"type"`
	Payload        []byte     `json:"payload"`
	State          string     `json:"state"`
	Priority       int        `json:"priority"`
	Attempts       int        `json:"attempts"`
	MaxAttempts    int        `json:"maxAttempts"`
	StallCount     int        `json:"stallCount"`
	RunAt          time.Time  `json:"runAt"`
	LockedUntil    *time.Time `json:"lockedUntil"`
	LastError      string     `json:"lastError"`
	DistributionID *string    `json:"distributionID"`
	AuditFields
}
