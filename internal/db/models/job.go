package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Field names for the job model
const (
	// JobStatusField is the database field name for the job status
	JobStatusField = "status"
	// JobCreatedAtField is the database field name for the job creation timestamp
	JobCreatedAtField = "created_at"
)

// JobStatus represents the current state of a job in its lifecycle
type JobStatus string

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = "unknown"
	// JobStatusPending indicates the job is open for bidding
	JobStatusPending JobStatus = "pending"
	// JobStatusAssigned indicates a bid was accepted and a worker is assigned
	JobStatusAssigned JobStatus = "assigned"
	// JobStatusWorkerCompleted indicates the worker marked the job done, awaiting confirmation
	JobStatusWorkerCompleted JobStatus = "worker_completed"
	// JobStatusCompleted indicates the job was confirmed (by customer or scheduler)
	JobStatusCompleted JobStatus = "completed"
	// JobStatusDispute indicates the customer raised a dispute
	JobStatusDispute JobStatus = "dispute"
	// JobStatusDisputed indicates an admin triaged the dispute
	JobStatusDisputed JobStatus = "disputed"
	// JobStatusCancelled indicates the job was cancelled; terminal
	JobStatusCancelled JobStatus = "cancelled"
	// JobStatusReopened indicates the assigned worker cancelled and the job is biddable again
	JobStatusReopened JobStatus = "reopened"
	// JobStatusWaitlisted indicates no eligible workers were found for the job
	JobStatusWaitlisted JobStatus = "waitlisted"
)

// PaymentStatus represents the escrow state of a job's funds
type PaymentStatus string

// Payment status constants
const (
	// PaymentStatusUnpaid indicates no funds have been captured
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	// PaymentStatusHolding indicates funds are captured and held in escrow
	PaymentStatusHolding PaymentStatus = "holding"
	// PaymentStatusPendingRelease indicates the hold window is running
	PaymentStatusPendingRelease PaymentStatus = "pending_release"
	// PaymentStatusReleased indicates funds were released to the worker
	PaymentStatusReleased PaymentStatus = "released"
	// PaymentStatusRefunded indicates funds were returned to the customer
	PaymentStatusRefunded PaymentStatus = "refunded"
	// PaymentStatusPartialRefund indicates funds were split between the parties
	PaymentStatusPartialRefund PaymentStatus = "partial_refund"
)

// Audit action constants. These are the canonical lifecycle event names;
// the job status is a projection over them (see ReplayStatus).
const (
	AuditActionPosted            = "posted"
	AuditActionBidAccepted       = "bid_accepted"
	AuditActionWorkerCompleted   = "worker_completed"
	AuditActionCustomerConfirmed = "customer_confirmed"
	AuditActionAutoConfirmed     = "auto_confirmed"
	AuditActionDisputeFiled      = "dispute_filed"
	AuditActionDisputeTriaged    = "dispute_triaged"
	AuditActionDisputeResolved   = "dispute_resolved"
	AuditActionCancelled         = "cancelled"
	AuditActionWorkerCancelled   = "worker_cancelled"
	AuditActionWaitlisted        = "waitlisted"
)

// AuditEntry is one immutable lifecycle event on a job
type AuditEntry struct {
	Action  string    `json:"action"`
	By      ActorRole `json:"by"`
	ActorID uint      `json:"actor_id"`
	At      time.Time `json:"at"`
	Notes   string    `json:"notes,omitempty"`
}

// AuditLog is the append-only event history of a job, stored as JSONB
type AuditLog []AuditEntry

// Value implements driver.Valuer for AuditLog
func (a AuditLog) Value() (driver.Value, error) {
	if a == nil {
		a = AuditLog{}
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for AuditLog
func (a *AuditLog) Scan(value interface{}) error {
	if value == nil {
		*a = AuditLog{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into AuditLog", value)
	}
}

// Job represents one posted task moving through the lifecycle
type Job struct {
	gorm.Model
	CustomerID  uint      `json:"customer_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Budget      float64   `json:"budget" gorm:"not null"`
	Location    string    `json:"location,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at" gorm:"index"`

	Status           JobStatus     `json:"status" gorm:"not null;index"`
	AssignedWorkerID *uint         `json:"assigned_worker_id,omitempty" gorm:"index"`
	AssignedPrice    *float64      `json:"assigned_price,omitempty"`
	PaymentStatus    PaymentStatus `json:"payment_status" gorm:"not null;index"`
	EscrowRef        string        `json:"escrow_ref,omitempty"`

	WorkerMarkedAt      *time.Time `json:"worker_marked_at,omitempty"`
	CustomerConfirmedAt *time.Time `json:"customer_confirmed_at,omitempty"`
	AutoConfirmedAt     *time.Time `json:"auto_confirmed_at,omitempty"`
	DisputedAt          *time.Time `json:"disputed_at,omitempty"`
	ReleaseDate         *time.Time `json:"release_date,omitempty" gorm:"index"`

	CancelReason   string     `json:"cancel_reason,omitempty"`
	CancelledBy    ActorRole  `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	WaitlistReason string     `json:"waitlist_reason,omitempty"`
	RepostCount    int        `json:"repost_count" gorm:"not null;default:0"`

	AuditLog  AuditLog  `json:"audit_log" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	switch JobStatus(str) {
	case JobStatusPending, JobStatusAssigned, JobStatusWorkerCompleted,
		JobStatusCompleted, JobStatusDispute, JobStatusDisputed,
		JobStatusCancelled, JobStatusReopened, JobStatusWaitlisted:
		return JobStatus(str), nil
	default:
		return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
	}
}

func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are permitted from s
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCancelled || s == JobStatusCompleted
}

// IsBiddable reports whether workers may submit bids in state s
func (s JobStatus) IsBiddable() bool {
	return s == JobStatusPending || s == JobStatusReopened
}

// Validate ensures that the job data is valid
func (j *Job) Validate() error {
	if j.Title == "" {
		return fmt.Errorf("job title cannot be empty")
	}
	if j.CustomerID == 0 {
		return fmt.Errorf("job customer_id cannot be 0")
	}
	if j.Budget < 0 {
		return fmt.Errorf("job budget cannot be negative")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new job
func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	if j.PaymentStatus == "" {
		j.PaymentStatus = PaymentStatusUnpaid
	}
	return j.Validate()
}

// Append records one lifecycle event on the job's audit log
func (j *Job) Append(action string, by ActorRole, actorID uint, at time.Time, notes string) {
	j.AuditLog = append(j.AuditLog, AuditEntry{
		Action:  action,
		By:      by,
		ActorID: actorID,
		At:      at,
		Notes:   notes,
	})
}

// ReplayStatus folds the audit log into the job status it implies.
// The stored Status column is a cached projection of this fold.
func (j *Job) ReplayStatus() JobStatus {
	status := JobStatusPending
	for _, e := range j.AuditLog {
		switch e.Action {
		case AuditActionPosted:
			status = JobStatusPending
		case AuditActionBidAccepted:
			status = JobStatusAssigned
		case AuditActionWorkerCompleted:
			status = JobStatusWorkerCompleted
		case AuditActionCustomerConfirmed, AuditActionAutoConfirmed, AuditActionDisputeResolved:
			status = JobStatusCompleted
		case AuditActionDisputeFiled:
			status = JobStatusDispute
		case AuditActionDisputeTriaged:
			status = JobStatusDisputed
		case AuditActionCancelled:
			status = JobStatusCancelled
		case AuditActionWorkerCancelled:
			status = JobStatusReopened
		case AuditActionWaitlisted:
			status = JobStatusWaitlisted
		}
	}
	return status
}
