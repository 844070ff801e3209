package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JobType identifies the kind of work a queued job carries.
type JobType string

const (
	JobDistribution    JobType = "DISTRIBUTION"
	JobPayout          JobType = "PAYOUT"
	JobNotification    JobType = "NOTIFICATION"
	JobDeposit         JobType = "DEPOSIT"
	JobWithdrawal      JobType = "WITHDRAWAL"
	JobFee             JobType = "FEE"
	JobTradeSettlement JobType = "TRADE_SETTLEMENT"
)

// JobTypes lists every known job type; worker pools are created per entry.
var JobTypes = []JobType{
	JobDistribution,
	JobPayout,
	JobNotification,
	JobDeposit,
	JobWithdrawal,
	JobFee,
	JobTradeSettlement,
}

// JobState is the queue-internal lifecycle state of a job.
type JobState string

const (
	JobWaiting   JobState = "WAITING"
	JobActive    JobState = "ACTIVE"
	JobDelayed   JobState = "DELAYED"
	JobCompleted JobState = "COMPLETED"
	JobFailed    JobState = "FAILED"
	JobStalled   JobState = "STALLED"
)

// JobStates lists every state, in the order metrics report them.
var JobStates = []JobState{JobWaiting, JobActive, JobDelayed, JobCompleted, JobFailed, JobStalled}

// JobPayload is the tagged variant carried by a job. Each job type has exactly
// one payload shape; consumers dispatch on the concrete type with an exhaustive
// switch instead of inspecting untyped maps.
type JobPayload interface {
	JobType() JobType
}

// DistributionPayload asks for a whole revenue report to be distributed.
type DistributionPayload struct {
	DistributionID  string `json:"distributionID"`
	RevenueReportID string `json:"revenueReportID"`
}

func (DistributionPayload) JobType() JobType { return JobDistribution }

// PayoutPayload asks for a single shareholder of a dividend to be paid.
// The (DividendID, UserID) pair is idempotent: the payout row's unique
// constraint makes replays no-ops.
type PayoutPayload struct {
	DistributionID string          `json:"distributionID"`
	DividendID     string          `json:"dividendID"`
	HoldingID      string          `json:"holdingID"`
	UserID         string          `json:"userID"`
	CompanyName    string          `json:"companyName"`
	SharesOwned    decimal.Decimal `json:"sharesOwned"`
	Amount         decimal.Decimal `json:"amount"`
}

func (PayoutPayload) JobType() JobType { return JobPayout }

// NotificationPayload asks for a best-effort dividend notification.
type NotificationPayload struct {
	UserID      string          `json:"userID"`
	CompanyName string          `json:"companyName"`
	Amount      decimal.Decimal `json:"amount"`
	SharesOwned decimal.Decimal `json:"sharesOwned"`
}

func (NotificationPayload) JobType() JobType { return JobNotification }

// DepositPayload credits a user wallet from an external rail.
type DepositPayload struct {
	UserID    string          `json:"userID"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

func (DepositPayload) JobType() JobType { return JobDeposit }

// WithdrawalPayload debits a user wallet toward an external rail.
type WithdrawalPayload struct {
	UserID    string          `json:"userID"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

func (WithdrawalPayload) JobType() JobType { return JobWithdrawal }

// FeePayload records a platform fee charge against a company's report.
type FeePayload struct {
	CompanyID       string          `json:"companyID"`
	RevenueReportID string          `json:"revenueReportID"`
	Amount          decimal.Decimal `json:"amount"`
}

func (FeePayload) JobType() JobType { return JobFee }

// TradeSettlementPayload settles a share trade between two users.
type TradeSettlementPayload struct {
	TradeID   string          `json:"tradeID"`
	CompanyID string          `json:"companyID"`
	BuyerID   string          `json:"buyerID"`
	SellerID  string          `json:"sellerID"`
	Shares    decimal.Decimal `json:"shares"`
	Price     decimal.Decimal `json:"price"`
}

func (TradeSettlementPayload) JobType() JobType { return JobTradeSettlement }

// EncodeJobPayload serializes a payload for durable storage.
func EncodeJobPayload(p JobPayload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.JobType(), err)
	}
	return raw, nil
}

// DecodeJobPayload deserializes the payload variant matching the job type.
// The switch is exhaustive over JobTypes; an unknown type is a data error.
func DecodeJobPayload(t JobType, raw []byte) (JobPayload, error) {
	var (
		p   JobPayload
		err error
	)
	switch t {
	case JobDistribution:
		var v DistributionPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case JobPayout:
		var v PayoutPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case JobNotification:
		var v NotificationPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case JobDeposit:
		var v DepositPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case JobWithdrawal:
		var v WithdrawalPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case JobFee:
		var v FeePayload
		err = json.Unmarshal(raw, &v)
		p = v
	case JobTradeSettlement:
		var v TradeSettlementPayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown job type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return p, nil
}

// Job is a durable unit of queued work. Its lifecycle is owned entirely by the
// queue; producers only enqueue and consumers only receive payloads.
type Job struct {
	JobID          string    `json:"jobID"`
	Type           JobType   `json:"type"`
	Payload        []byte    `json:"payload"`
	State          JobState  `json:"state"`
	Priority       int       `json:"priority"`
	Attempts       int       `json:"attempts"`
	MaxAttempts    int       `json:"maxAttempts"`
	StallCount     int       `json:"stallCount"`
	RunAt          time.Time `json:"runAt"`
	LockedUntil    *time.Time `json:"lockedUntil,omitempty"`
	LastError      string    `json:"lastError,omitempty"`
	DistributionID *string   `json:"distributionID,omitempty"`
	AuditFields
}

// DistributionProgress summarizes how far the payout jobs of one distribution
// have drained through the queue.
type DistributionProgress struct {
	DistributionID string  `json:"distributionID"`
	Completed      int     `json:"completed"`
	Failed         int     `json:"failed"`
	Pending        int     `json:"pending"`
	Percent        float64 `json:"percent"`
}

// Drained reports whether no waiting, active or delayed jobs remain.
func (p DistributionProgress) Drained() bool {
	return p.Pending == 0
}
