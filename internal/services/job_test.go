package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/notify"
	"github.com/gigbridge/gigbridge/internal/payments"
)

func TestPostJob(t *testing.T) {
	s := NewTestSetup(t)

	job := s.createJob(t, 42, 90, time.Now().Add(72*time.Hour))
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, job.PaymentStatus)
	require.Len(t, job.AuditLog, 1)
	assert.Equal(t, models.AuditActionPosted, job.AuditLog[0].Action)
}

func TestAcceptBid(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job := s.createJob(t, customerID, 90, time.Now().Add(72*time.Hour))

	winner := s.createWorker(t)
	loser := s.createWorker(t)
	winningBid, err := s.BidSvc.Submit(s.Ctx, job.ID, winner.ID, 90, "")
	require.NoError(t, err)
	losingBid, err := s.BidSvc.Submit(s.Ctx, job.ID, loser.ID, 95, "")
	require.NoError(t, err)

	assigned, err := s.JobSvc.AcceptBid(s.Ctx, job.ID, winningBid.ID, customerID)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusAssigned, assigned.Status)
	assert.Equal(t, models.PaymentStatusHolding, assigned.PaymentStatus)
	require.NotNil(t, assigned.AssignedWorkerID)
	assert.Equal(t, winner.ID, *assigned.AssignedWorkerID)
	require.NotNil(t, assigned.AssignedPrice)
	assert.InDelta(t, 90.0, *assigned.AssignedPrice, 0.001)
	assert.NotEmpty(t, assigned.EscrowRef)

	// The gateway holds the full price.
	hold, ok := s.Gateway.Hold(assigned.EscrowRef)
	require.True(t, ok)
	assert.Equal(t, payments.HoldStateActive, hold.State)
	assert.InDelta(t, 90.0, hold.Amount, 0.001)

	// The worker's ledger carries one unreleased, unarmed hold for the net
	// earnings. Completion arms it.
	entries, err := s.Ledger.ListByWorker(s.Ctx, winner.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 85.51, entries[0].Amount, 0.001)
	assert.False(t, entries[0].Released)
	assert.Nil(t, entries[0].AvailableAt)

	// Losing bids become non-actionable but stay recorded.
	updated, err := s.Bids.GetByID(s.Ctx, losingBid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusRejected, updated.Status)

	win, err := s.Bids.GetWinningBid(s.Ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, win)
	assert.Equal(t, winningBid.ID, win.ID)

	assert.True(t, s.Notifier.hasKind(notify.KindBidAccepted))
	assert.True(t, s.Notifier.hasKind(notify.KindBidRejected))
}

func TestAcceptBidAlreadyAssigned(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job := s.createJob(t, customerID, 90, time.Now().Add(72*time.Hour))

	first, err := s.BidSvc.Submit(s.Ctx, job.ID, s.createWorker(t).ID, 90, "")
	require.NoError(t, err)
	second, err := s.BidSvc.Submit(s.Ctx, job.ID, s.createWorker(t).ID, 85, "")
	require.NoError(t, err)

	_, err = s.JobSvc.AcceptBid(s.Ctx, job.ID, first.ID, customerID)
	require.NoError(t, err)

	_, err = s.JobSvc.AcceptBid(s.Ctx, job.ID, second.ID, customerID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.JobStatusAssigned, stateErr.CurrentStatus)
}

func TestAcceptBidWrongCustomer(t *testing.T) {
	s := NewTestSetup(t)
	job := s.createJob(t, 1, 90, time.Now().Add(72*time.Hour))
	bid, err := s.BidSvc.Submit(s.Ctx, job.ID, s.createWorker(t).ID, 90, "")
	require.NoError(t, err)

	_, err = s.JobSvc.AcceptBid(s.Ctx, job.ID, bid.ID, 999)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAcceptBidCaptureFailureLeavesJobUnchanged(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job := s.createJob(t, customerID, 90, time.Now().Add(72*time.Hour))
	bid, err := s.BidSvc.Submit(s.Ctx, job.ID, s.createWorker(t).ID, 90, "")
	require.NoError(t, err)

	s.Gateway.FailCapture = true
	_, err = s.JobSvc.AcceptBid(s.Ctx, job.ID, bid.ID, customerID)
	assert.ErrorIs(t, err, ErrUpstreamFailure)

	current, err := s.Jobs.GetByID(s.Ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, current.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, current.PaymentStatus)
	assert.Nil(t, current.AssignedWorkerID)
	assert.Empty(t, current.EscrowRef)
}

func TestAcceptBidRestrictedWorker(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job := s.createJob(t, customerID, 90, time.Now().Add(72*time.Hour))
	worker := s.createWorker(t)
	bid, err := s.BidSvc.Submit(s.Ctx, job.ID, worker.ID, 90, "")
	require.NoError(t, err)

	// Suspended after bidding, before acceptance.
	until := time.Now().Add(7 * 24 * time.Hour)
	worker.Status = models.WorkerStatusSuspended
	worker.SuspendedUntil = &until
	require.NoError(t, s.Workers.Update(s.Ctx, worker))

	_, err = s.JobSvc.AcceptBid(s.Ctx, job.ID, bid.ID, customerID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMarkWorkerCompleted(t *testing.T) {
	s := NewTestSetup(t)
	job, _, worker := s.assignJob(t, 1, 90, time.Now().Add(-24*time.Hour))

	completed, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, worker.ID)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusWorkerCompleted, completed.Status)
	require.NotNil(t, completed.WorkerMarkedAt)
	require.NotNil(t, completed.ReleaseDate)
	assert.WithinDuration(t, completed.WorkerMarkedAt.Add(HoldWindow), *completed.ReleaseDate, time.Second)

	// The ledger hold armed with the actual release date.
	entries, err := s.Ledger.ListByWorker(s.Ctx, worker.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].AvailableAt)
	assert.WithinDuration(t, *completed.ReleaseDate, *entries[0].AvailableAt, time.Second)
}

func TestMarkWorkerCompletedBeforeScheduledDate(t *testing.T) {
	s := NewTestSetup(t)
	job, _, worker := s.assignJob(t, 1, 90, time.Now().Add(72*time.Hour))

	_, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, worker.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	current, err := s.Jobs.GetByID(s.Ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusAssigned, current.Status)
}

func TestMarkWorkerCompletedWrongWorker(t *testing.T) {
	s := NewTestSetup(t)
	job, _, _ := s.assignJob(t, 1, 90, time.Now().Add(-24*time.Hour))
	other := s.createWorker(t)

	_, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, other.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestConfirmCompletion(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, _, worker := s.assignJob(t, customerID, 90, time.Now().Add(-24*time.Hour))
	_, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, worker.ID)
	require.NoError(t, err)

	confirmed, err := s.JobSvc.ConfirmCompletion(s.Ctx, job.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, confirmed.Status)
	assert.Equal(t, models.PaymentStatusPendingRelease, confirmed.PaymentStatus)
	require.NotNil(t, confirmed.CustomerConfirmedAt)

	// A repeat confirmation is a no-op, not an error.
	again, err := s.JobSvc.ConfirmCompletion(s.Ctx, job.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, again.Status)
}

func TestConfirmCompletionNotAwaiting(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, _, _ := s.assignJob(t, customerID, 90, time.Now().Add(-24*time.Hour))

	_, err := s.JobSvc.ConfirmCompletion(s.Ctx, job.ID, customerID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFileDispute(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, _, worker := s.assignJob(t, customerID, 90, time.Now().Add(-24*time.Hour))
	_, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, worker.ID)
	require.NoError(t, err)

	disputed, err := s.JobSvc.FileDispute(s.Ctx, job.ID, customerID, "shelf is crooked")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDispute, disputed.Status)
	require.NotNil(t, disputed.DisputedAt)

	// The escrow freezes; the worker's hold never matures while blocked.
	entries, err := s.Ledger.ListByWorker(s.Ctx, worker.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Blocked)

	assert.True(t, s.Notifier.hasKind(notify.KindDisputeFiled))
}

func TestFileDisputeOnlyFromWorkerCompleted(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, _, _ := s.assignJob(t, customerID, 90, time.Now().Add(-24*time.Hour))

	_, err := s.JobSvc.FileDispute(s.Ctx, job.ID, customerID, "nope")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestResolveDisputeForWorker(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	adminID := uint(100)
	job, _, worker := s.assignJob(t, customerID, 90, time.Now().Add(-24*time.Hour))
	_, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, worker.ID)
	require.NoError(t, err)
	_, err = s.JobSvc.FileDispute(s.Ctx, job.ID, customerID, "late")
	require.NoError(t, err)

	triaged, err := s.JobSvc.TriageDispute(s.Ctx, job.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDisputed, triaged.Status)

	resolved, err := s.JobSvc.ResolveDispute(s.Ctx, job.ID, adminID, true, "work was fine")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, resolved.Status)
	assert.Equal(t, models.PaymentStatusPendingRelease, resolved.PaymentStatus)

	// The escrow unfreezes and matures normally.
	entries, err := s.Ledger.ListByWorker(s.Ctx, worker.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Blocked)
}

func TestResolveDisputeForCustomer(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	adminID := uint(100)
	job, _, worker := s.assignJob(t, customerID, 90, time.Now().Add(-24*time.Hour))
	escrowRef := job.EscrowRef
	_, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, worker.ID)
	require.NoError(t, err)
	_, err = s.JobSvc.FileDispute(s.Ctx, job.ID, customerID, "not done")
	require.NoError(t, err)

	resolved, err := s.JobSvc.ResolveDispute(s.Ctx, job.ID, adminID, false, "refund the customer")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, resolved.Status)
	assert.Equal(t, models.PaymentStatusRefunded, resolved.PaymentStatus)

	hold, ok := s.Gateway.Hold(escrowRef)
	require.True(t, ok)
	assert.Equal(t, payments.HoldStateRefunded, hold.State)

	// The voided hold stays in the ledger as a blocked record.
	entries, err := s.Ledger.ListByWorker(s.Ctx, worker.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Blocked)
	assert.False(t, entries[0].Released)
}

func TestCancelAssignedJobRefundsEscrow(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, bid, worker := s.assignJob(t, customerID, 90, time.Now().Add(72*time.Hour))
	escrowRef := job.EscrowRef

	cancelled, err := s.JobSvc.Cancel(s.Ctx, job.ID, customerID, models.ActorCustomer, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusRefunded, cancelled.PaymentStatus)
	assert.Equal(t, models.ActorCustomer, cancelled.CancelledBy)

	hold, ok := s.Gateway.Hold(escrowRef)
	require.True(t, ok)
	assert.Equal(t, payments.HoldStateRefunded, hold.State)

	updatedBid, err := s.Bids.GetByID(s.Ctx, bid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusRejected, updatedBid.Status)

	entries, err := s.Ledger.ListByWorker(s.Ctx, worker.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Blocked)
}

func TestCancelRequiresCustomerOrAdmin(t *testing.T) {
	s := NewTestSetup(t)
	job := s.createJob(t, 1, 90, time.Now().Add(72*time.Hour))

	_, err := s.JobSvc.Cancel(s.Ctx, job.ID, 2, models.ActorWorker, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Another customer cannot cancel someone else's job.
	_, err = s.JobSvc.Cancel(s.Ctx, job.ID, 2, models.ActorCustomer, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Admins can.
	cancelled, err := s.JobSvc.Cancel(s.Ctx, job.ID, 100, models.ActorAdmin, "policy")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)
}

func TestCancelTerminalJobRejected(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, _, worker := s.assignJob(t, customerID, 90, time.Now().Add(-24*time.Hour))
	_, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, worker.ID)
	require.NoError(t, err)
	_, err = s.JobSvc.ConfirmCompletion(s.Ctx, job.ID, customerID)
	require.NoError(t, err)

	_, err = s.JobSvc.Cancel(s.Ctx, job.ID, customerID, models.ActorCustomer, "too late")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelStandsWhenRefundFails(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, _, _ := s.assignJob(t, customerID, 90, time.Now().Add(72*time.Hour))

	// The cancellation commits first; the refund is the follow-up action and
	// its failure leaves a reconciliation item, not a live job.
	s.Gateway.FailRefund = true
	cancelled, err := s.JobSvc.Cancel(s.Ctx, job.ID, customerID, models.ActorCustomer, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusRefunded, cancelled.PaymentStatus)

	hold, ok := s.Gateway.Hold(job.EscrowRef)
	require.True(t, ok)
	assert.Equal(t, payments.HoldStateActive, hold.State)
}

func TestWorkerCancelStandsWhenRefundFails(t *testing.T) {
	s := NewTestSetup(t)
	job, _, worker := s.assignJob(t, 1, 90, time.Now().Add(72*time.Hour))

	s.Gateway.FailRefund = true
	reopened, err := s.JobSvc.WorkerCancel(s.Ctx, job.ID, worker.ID, "double booked")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusReopened, reopened.Status)

	updatedWorker, err := s.Workers.GetByID(s.Ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedWorker.CancellationCount)

	hold, ok := s.Gateway.Hold(job.EscrowRef)
	require.True(t, ok)
	assert.Equal(t, payments.HoldStateActive, hold.State)
}

func TestWorkerCancelReopensJob(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, bid, worker := s.assignJob(t, customerID, 90, time.Now().Add(72*time.Hour))
	escrowRef := job.EscrowRef

	reopened, err := s.JobSvc.WorkerCancel(s.Ctx, job.ID, worker.ID, "double booked")
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusReopened, reopened.Status)
	assert.Nil(t, reopened.AssignedWorkerID)
	assert.Nil(t, reopened.AssignedPrice)
	assert.Empty(t, reopened.EscrowRef)
	assert.Equal(t, models.PaymentStatusRefunded, reopened.PaymentStatus)
	assert.Equal(t, 1, reopened.RepostCount)

	hold, ok := s.Gateway.Hold(escrowRef)
	require.True(t, ok)
	assert.Equal(t, payments.HoldStateRefunded, hold.State)

	// All prior bids are invalidated; the job accepts fresh ones.
	updatedBid, err := s.Bids.GetByID(s.Ctx, bid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusRejected, updatedBid.Status)
	assert.True(t, reopened.Status.IsBiddable())

	// The voided hold is blocked, never deleted.
	entries, err := s.Ledger.ListByWorker(s.Ctx, worker.ID, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Blocked)

	// First cancellation is a warning only.
	updatedWorker, err := s.Workers.GetByID(s.Ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedWorker.CancellationCount)
	assert.Equal(t, models.WorkerStatusApproved, updatedWorker.Status)

	assert.True(t, s.Notifier.hasKind(notify.KindJobReopened))
}

func TestWorkerCancelEscalation(t *testing.T) {
	s := NewTestSetup(t)
	worker := s.createWorker(t)

	// Drive the same worker through repeated cancellations on fresh jobs.
	cancelOnce := func(t *testing.T) *models.Worker {
		t.Helper()
		job := s.createJob(t, 1, 90, time.Now().Add(72*time.Hour))
		bid, err := s.BidSvc.Submit(s.Ctx, job.ID, worker.ID, 90, "")
		require.NoError(t, err)
		_, err = s.JobSvc.AcceptBid(s.Ctx, job.ID, bid.ID, 1)
		require.NoError(t, err)
		_, err = s.JobSvc.WorkerCancel(s.Ctx, job.ID, worker.ID, "again")
		require.NoError(t, err)

		updated, err := s.Workers.GetByID(s.Ctx, worker.ID)
		require.NoError(t, err)
		return updated
	}

	first := cancelOnce(t)
	assert.Equal(t, models.WorkerStatusApproved, first.Status)

	second := cancelOnce(t)
	assert.Equal(t, models.WorkerStatusSuspended, second.Status)
	require.NotNil(t, second.SuspendedUntil)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *second.SuspendedUntil, time.Minute)

	// A suspended worker cannot bid; clear the suspension between rounds the
	// way the passage of time would.
	second.Status = models.WorkerStatusApproved
	second.SuspendedUntil = nil
	require.NoError(t, s.Workers.Update(s.Ctx, second))

	third := cancelOnce(t)
	assert.Equal(t, models.WorkerStatusSuspended, third.Status)
	require.NotNil(t, third.SuspendedUntil)
	assert.WithinDuration(t, time.Now().Add(14*24*time.Hour), *third.SuspendedUntil, time.Minute)

	third.Status = models.WorkerStatusApproved
	third.SuspendedUntil = nil
	require.NoError(t, s.Workers.Update(s.Ctx, third))

	fourth := cancelOnce(t)
	assert.Equal(t, models.WorkerStatusBanned, fourth.Status)
	assert.True(t, fourth.RequiresAdminReview)
	assert.True(t, s.Notifier.hasKind(notify.KindAdminEscalation))
	assert.True(t, s.Notifier.hasKind(notify.KindWorkerBanned))
}

func TestWorkerCancelInvitesOtherBidders(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job := s.createJob(t, customerID, 90, time.Now().Add(72*time.Hour))

	canceller := s.createWorker(t)
	other := s.createWorker(t)
	winning, err := s.BidSvc.Submit(s.Ctx, job.ID, canceller.ID, 90, "")
	require.NoError(t, err)
	_, err = s.BidSvc.Submit(s.Ctx, job.ID, other.ID, 95, "")
	require.NoError(t, err)
	_, err = s.JobSvc.AcceptBid(s.Ctx, job.ID, winning.ID, customerID)
	require.NoError(t, err)

	_, err = s.JobSvc.WorkerCancel(s.Ctx, job.ID, canceller.ID, "")
	require.NoError(t, err)

	invited := false
	for _, n := range s.Notifier.sent {
		if n.Kind == notify.KindReopenInvitation && n.Recipient == other.Email {
			invited = true
		}
		// The canceller never gets a reopen invitation.
		if n.Kind == notify.KindReopenInvitation && n.Recipient == canceller.Email {
			t.Fatalf("canceller %s received a reopen invitation", canceller.Email)
		}
	}
	assert.True(t, invited)
}

func TestWaitlist(t *testing.T) {
	s := NewTestSetup(t)
	job := s.createJob(t, 1, 90, time.Now().Add(72*time.Hour))

	waitlisted, err := s.JobSvc.Waitlist(s.Ctx, job.ID, "no eligible workers in the area")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusWaitlisted, waitlisted.Status)
	assert.Equal(t, "no eligible workers in the area", waitlisted.WaitlistReason)
	assert.True(t, s.Notifier.hasKind(notify.KindJobWaitlisted))

	// Only pending jobs can be waitlisted.
	_, err = s.JobSvc.Waitlist(s.Ctx, job.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidState)

	// Waitlisted jobs can still be cancelled.
	cancelled, err := s.JobSvc.Cancel(s.Ctx, job.ID, 1, models.ActorCustomer, "give up")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)
}

func TestAuditLogReplayMatchesStatus(t *testing.T) {
	s := NewTestSetup(t)
	customerID := uint(1)
	job, _, worker := s.assignJob(t, customerID, 90, time.Now().Add(-24*time.Hour))
	_, err := s.JobSvc.MarkWorkerCompleted(s.Ctx, job.ID, worker.ID)
	require.NoError(t, err)
	_, err = s.JobSvc.ConfirmCompletion(s.Ctx, job.ID, customerID)
	require.NoError(t, err)

	final, err := s.Jobs.GetByID(s.Ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, final.Status, final.ReplayStatus())
	require.Len(t, final.AuditLog, 4)
	assert.Equal(t, models.AuditActionPosted, final.AuditLog[0].Action)
	assert.Equal(t, models.AuditActionBidAccepted, final.AuditLog[1].Action)
	assert.Equal(t, models.AuditActionWorkerCompleted, final.AuditLog[2].Action)
	assert.Equal(t, models.AuditActionCustomerConfirmed, final.AuditLog[3].Action)
}
