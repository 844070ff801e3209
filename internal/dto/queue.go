package dto

// QueueMetrics reports job counts per type and state.
type QueueMetrics struct {
	Paused bool                      `json:"paused"`
	Counts map[string]map[string]int `json:"counts"`
}

// RetryFailedRequest selects which failed jobs to requeue. An empty list means
// every failed job.
type RetryFailedRequest struct {
	JobIDs []string `json:"jobIDs"`
}

// RetryFailedResponse reports how many jobs were requeued.
type RetryFailedResponse struct {
	Retried int `json:"retried"`
}
