package mapping

import (
	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/clearvest/payout_engine/internal/models"
)

// ToModelJob converts a domain Job to a model Job.
func ToModelJob(d domain.Job) models.Job {
	return models.Job{
		JobID:          d.JobID,
		Type:           string(d.Type),
		Payload:        d.Payload,
		State:          string(d.State),
		Priority:       d.Priority,
		Attempts:       d.Attempts,
		MaxAttempts:    d.MaxAttempts,
		StallCount:     d.StallCount,
		RunAt:          d.RunAt,
		LockedUntil:    d.LockedUntil,
		LastError:      d.LastError,
		DistributionID: d.DistributionID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJob converts a model Job to a domain Job.
func ToDomainJob(m models.Job) domain.Job {
	return domain.Job{
		JobID:          m.JobID,
		Type:           domain.JobType(m.Type),
		Payload:        m.Payload,
		State:          domain.JobState(m.State),
		Priority:       m.Priority,
		Attempts:       m.Attempts,
		MaxAttempts:    m.MaxAttempts,
		StallCount:     m.StallCount,
		RunAt:          m.RunAt,
		LockedUntil:    m.LockedUntil,
		LastError:      m.LastError,
		DistributionID: m.DistributionID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJobSlice converts a slice of model Jobs.
func ToDomainJobSlice(ms []models.Job) []domain.Job {
	ds := make([]domain.Job, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJob(m)
	}
	return ds
}
