package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// WorkerStatus represents the vetting / standing state of a worker
type WorkerStatus string

// Worker status constants
const (
	// WorkerStatusIncomplete indicates the worker has not finished onboarding
	WorkerStatusIncomplete WorkerStatus = "incomplete"
	// WorkerStatusPending indicates the worker awaits approval
	WorkerStatusPending WorkerStatus = "pending"
	// WorkerStatusApproved indicates the worker may bid and perform jobs
	WorkerStatusApproved WorkerStatus = "approved"
	// WorkerStatusRejected indicates the worker application was rejected
	WorkerStatusRejected WorkerStatus = "rejected"
	// WorkerStatusSuspended indicates the worker is temporarily suspended
	WorkerStatusSuspended WorkerStatus = "suspended"
	// WorkerStatusBanned indicates the worker is banned pending admin review
	WorkerStatusBanned WorkerStatus = "banned"
)

// ParseWorkerStatus converts a string representation of a worker status to WorkerStatus type
func ParseWorkerStatus(str string) (WorkerStatus, error) {
	switch WorkerStatus(str) {
	case WorkerStatusIncomplete, WorkerStatusPending, WorkerStatusApproved,
		WorkerStatusRejected, WorkerStatusSuspended, WorkerStatusBanned:
		return WorkerStatus(str), nil
	default:
		return WorkerStatusIncomplete, fmt.Errorf("invalid worker status: %s", str)
	}
}

// Worker represents a worker account with wallet and reliability state
type Worker struct {
	gorm.Model
	Name  string `json:"name" gorm:"not null"`
	Email string `json:"email" gorm:"not null;uniqueIndex"`

	Status        WorkerStatus `json:"status" gorm:"not null;index"`
	WalletBalance float64      `json:"wallet_balance" gorm:"not null;default:0"`

	CancellationCount   int        `json:"cancellation_count" gorm:"not null;default:0"`
	LastCancellationAt  *time.Time `json:"last_cancellation_at,omitempty"`
	SuspendedUntil      *time.Time `json:"suspended_until,omitempty"`
	RequiresAdminReview bool       `json:"requires_admin_review" gorm:"not null;default:false"`
}

// BeforeCreate is a GORM hook that runs before creating a new worker
func (w *Worker) BeforeCreate(_ *gorm.DB) error {
	if w.Status == "" {
		w.Status = WorkerStatusPending
	}
	if w.Email == "" {
		return fmt.Errorf("worker email cannot be empty")
	}
	return nil
}

// IsRestricted reports whether the worker may not bid or be assigned at the given time
func (w *Worker) IsRestricted(now time.Time) bool {
	if w.Status == WorkerStatusBanned {
		return true
	}
	if w.Status == WorkerStatusSuspended && w.SuspendedUntil != nil && now.Before(*w.SuspendedUntil) {
		return true
	}
	return false
}
