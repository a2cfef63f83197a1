package services

import (
	"time"

	"github.com/gigbridge/gigbridge/internal/db/models"
)

// Suspension durations of the cancellation escalation policy
const (
	firstSuspension  = 7 * 24 * time.Hour
	secondSuspension = 14 * 24 * time.Hour
)

// Escalation is the outcome of the cancellation policy for a given count
type Escalation struct {
	WorkerStatus models.WorkerStatus
	SuspendFor   *time.Duration
	NotifyAdmin  bool
}

// Escalate maps a worker's cumulative cancellation count to the enforcement
// action. Total over all counts; the counter is monotonic and only admin
// action resets it.
func Escalate(count int) Escalation {
	switch {
	case count <= 1:
		return Escalation{WorkerStatus: models.WorkerStatusApproved}
	case count == 2:
		d := firstSuspension
		return Escalation{WorkerStatus: models.WorkerStatusSuspended, SuspendFor: &d}
	case count == 3:
		d := secondSuspension
		return Escalation{WorkerStatus: models.WorkerStatusSuspended, SuspendFor: &d}
	default:
		return Escalation{WorkerStatus: models.WorkerStatusBanned, NotifyAdmin: true}
	}
}
