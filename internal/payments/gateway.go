// Package payments defines the payment gateway port the escrow semantics
// depend on. Wire details of a concrete gateway live behind this interface.
package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Gateway is the synchronous payment collaborator. Success of these calls
// gates paymentStatus transitions; failure surfaces as an error to the
// triggering action, leaving job state unchanged.
type Gateway interface {
	// CaptureHold captures the customer's funds into escrow and returns the escrow reference
	CaptureHold(ctx context.Context, jobID uint, amount float64) (string, error)
	// ReleaseToWorker releases held funds to the assigned worker
	ReleaseToWorker(ctx context.Context, escrowRef string) error
	// Refund returns held funds to the customer
	Refund(ctx context.Context, escrowRef string, amount float64) error
}

// HoldState is the lifecycle state of a fake escrow hold
type HoldState string

// Hold states
const (
	HoldStateActive   HoldState = "active"
	HoldStateReleased HoldState = "released"
	HoldStateRefunded HoldState = "refunded"
)

// Hold records one captured escrow hold in the fake gateway
type Hold struct {
	EscrowRef string
	JobID     uint
	Amount    float64
	Refunded  float64
	State     HoldState
}

// FakeGateway is an in-memory Gateway used in tests and local development.
// It issues real escrow references and enforces hold-state transitions so
// double releases and refunds of unknown refs fail loudly.
type FakeGateway struct {
	mu    sync.Mutex
	holds map[string]*Hold

	// FailCapture makes CaptureHold fail, for upstream-failure tests
	FailCapture bool
	// FailRefund makes Refund fail, for reconciliation-path tests
	FailRefund bool
}

// NewFakeGateway creates an empty fake gateway
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{holds: make(map[string]*Hold)}
}

// CaptureHold implements Gateway
func (g *FakeGateway) CaptureHold(_ context.Context, jobID uint, amount float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCapture {
		return "", fmt.Errorf("capture declined for job %d", jobID)
	}
	ref := uuid.NewString()
	g.holds[ref] = &Hold{
		EscrowRef: ref,
		JobID:     jobID,
		Amount:    amount,
		State:     HoldStateActive,
	}
	return ref, nil
}

// ReleaseToWorker implements Gateway. Releasing an already-released hold is
// a no-op so the settlement sweep stays idempotent.
func (g *FakeGateway) ReleaseToWorker(_ context.Context, escrowRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	hold, ok := g.holds[escrowRef]
	if !ok {
		return fmt.Errorf("unknown escrow ref: %s", escrowRef)
	}
	if hold.State == HoldStateRefunded {
		return fmt.Errorf("escrow ref %s already refunded", escrowRef)
	}
	hold.State = HoldStateReleased
	return nil
}

// Refund implements Gateway
func (g *FakeGateway) Refund(_ context.Context, escrowRef string, amount float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailRefund {
		return fmt.Errorf("refund declined for %s", escrowRef)
	}
	hold, ok := g.holds[escrowRef]
	if !ok {
		return fmt.Errorf("unknown escrow ref: %s", escrowRef)
	}
	if hold.State == HoldStateReleased {
		return fmt.Errorf("escrow ref %s already released", escrowRef)
	}
	if amount > hold.Amount-hold.Refunded {
		return fmt.Errorf("refund exceeds held amount for %s", escrowRef)
	}
	hold.Refunded += amount
	hold.State = HoldStateRefunded
	return nil
}

// Hold returns a copy of the hold for the given ref, for assertions
func (g *FakeGateway) Hold(escrowRef string) (Hold, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	hold, ok := g.holds[escrowRef]
	if !ok {
		return Hold{}, false
	}
	return *hold, true
}
