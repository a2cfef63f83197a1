// Package services implements the job/bid/escrow lifecycle engine.
package services

import (
	"errors"
	"fmt"

	"github.com/gigbridge/gigbridge/internal/db/models"
)

// Error kinds surfaced by the lifecycle engine. Handlers map these to HTTP
// status codes; callers test them with errors.Is.
var (
	// ErrNotFound indicates the job, bid or worker does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a duplicate bid or an already-assigned job
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized indicates the actor is not entitled to act on the entity
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState indicates a transition attempted from a state that forbids it
	ErrInvalidState = errors.New("invalid state")
	// ErrUpstreamFailure indicates the payment gateway or a collaborator failed
	ErrUpstreamFailure = errors.New("upstream failure")
)

// StateError is a rejected transition carrying the entity's current
// authoritative status, so the caller can reconcile without replaying
// the audit log.
type StateError struct {
	Kind          error
	CurrentStatus models.JobStatus
	Msg           string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s (current status: %s)", e.Kind, e.Msg, e.CurrentStatus)
}

// Unwrap exposes the error kind for errors.Is
func (e *StateError) Unwrap() error {
	return e.Kind
}

func invalidStateErr(status models.JobStatus, msg string) error {
	return &StateError{Kind: ErrInvalidState, CurrentStatus: status, Msg: msg}
}

func conflictErr(status models.JobStatus, msg string) error {
	return &StateError{Kind: ErrConflict, CurrentStatus: status, Msg: msg}
}

// retryOnce retries fn one time on failure. Used for bid and ledger writes
// where a transient storage error should not surface to the caller.
func retryOnce(fn func() error) error {
	if err := fn(); err != nil {
		return fn()
	}
	return nil
}
