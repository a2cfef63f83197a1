package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/db/repos"
	"github.com/gigbridge/gigbridge/internal/events"
	"github.com/gigbridge/gigbridge/internal/logger"
	"github.com/gigbridge/gigbridge/internal/notify"
	"github.com/gigbridge/gigbridge/internal/payments"
)

// HoldWindow is the delay between worker-marked completion and release
// eligibility. The customer can confirm or dispute inside this window.
const HoldWindow = 48 * time.Hour

// Job owns the job lifecycle state machine. Every transition is committed
// through an optimistic status guard and appends one audit entry in the same
// row write; notifications and events fire only after the durable write.
type Job struct {
	jobs     *repos.JobRepository
	bids     *repos.BidRepository
	workers  *repos.WorkerRepository
	ledger   *repos.LedgerRepository
	gateway  payments.Gateway
	notifier notify.Dispatcher
}

// NewJobService creates a new instance of the job lifecycle service
func NewJobService(
	jobs *repos.JobRepository,
	bids *repos.BidRepository,
	workers *repos.WorkerRepository,
	ledger *repos.LedgerRepository,
	gateway payments.Gateway,
	notifier notify.Dispatcher,
) *Job {
	return &Job{
		jobs:     jobs,
		bids:     bids,
		workers:  workers,
		ledger:   ledger,
		gateway:  gateway,
		notifier: notifier,
	}
}

// PostParams are the customer-supplied fields of a new job
type PostParams struct {
	Title       string
	Description string
	Budget      float64
	Location    string
	ScheduledAt time.Time
}

// Post creates a new job in pending status
func (s *Job) Post(ctx context.Context, customerID uint, params PostParams) (*models.Job, error) {
	now := time.Now()
	job := &models.Job{
		CustomerID:    customerID,
		Title:         params.Title,
		Description:   params.Description,
		Budget:        params.Budget,
		Location:      params.Location,
		ScheduledAt:   params.ScheduledAt,
		Status:        models.JobStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	job.Append(models.AuditActionPosted, models.ActorCustomer, customerID, now, "")
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	events.Publish(events.Event{
		Topic:  events.TopicJobUpdate,
		JobID:  job.ID,
		Status: job.Status.String(),
	})
	return job, nil
}

// Get retrieves a job by ID
func (s *Job) Get(ctx context.Context, jobID uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	return job, nil
}

// ListByCustomer returns a customer's jobs
func (s *Job) ListByCustomer(ctx context.Context, customerID uint, opts *models.ListOptions) ([]models.Job, error) {
	return s.jobs.ListByCustomer(ctx, customerID, opts)
}

// ListByStatus returns jobs in the given status
func (s *Job) ListByStatus(ctx context.Context, status models.JobStatus, opts *models.ListOptions) ([]models.Job, error) {
	return s.jobs.ListByStatus(ctx, status, opts)
}

// AcceptBid assigns the job to the chosen bid's worker, captures the escrow
// hold and creates the worker's ledger credit. Losing bids stay recorded but
// become non-actionable.
func (s *Job) AcceptBid(ctx context.Context, jobID, bidID, customerID uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.CustomerID != customerID {
		return nil, fmt.Errorf("%w: job %d does not belong to customer %d", ErrUnauthorized, jobID, customerID)
	}
	if job.AssignedWorkerID != nil || !job.Status.IsBiddable() {
		return nil, conflictErr(job.Status, "job is already assigned")
	}

	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("%w: bid %d", ErrNotFound, bidID)
	}
	if bid.JobID != jobID {
		return nil, fmt.Errorf("%w: bid %d is not a bid on job %d", ErrNotFound, bidID, jobID)
	}
	if bid.Status != models.BidStatusPending {
		return nil, fmt.Errorf("%w: bid %d is no longer actionable", ErrInvalidState, bidID)
	}

	worker, err := s.workers.GetByID(ctx, bid.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("%w: worker %d", ErrNotFound, bid.WorkerID)
	}
	now := time.Now()
	if worker.IsRestricted(now) {
		return nil, fmt.Errorf("%w: worker %d is suspended or banned", ErrUnauthorized, worker.ID)
	}

	// Capture the escrow hold before touching job state; a gateway failure
	// leaves the job unchanged.
	escrowRef, err := s.gateway.CaptureHold(ctx, jobID, bid.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: payment capture failed: %v", ErrUpstreamFailure, err)
	}

	workerID := bid.WorkerID
	price := bid.Price
	job.Status = models.JobStatusAssigned
	job.AssignedWorkerID = &workerID
	job.AssignedPrice = &price
	job.PaymentStatus = models.PaymentStatusHolding
	job.EscrowRef = escrowRef
	job.Append(models.AuditActionBidAccepted, models.ActorCustomer, customerID, now,
		fmt.Sprintf("bid %d by worker %d at %.2f", bidID, workerID, price))

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusPending, models.JobStatusReopened); err != nil {
		if errors.Is(err, repos.ErrStaleTransition) {
			current, _ := s.jobs.GetByID(ctx, jobID)
			status := models.JobStatusUnknown
			if current != nil {
				status = current.Status
			}
			return nil, conflictErr(status, "job was assigned concurrently")
		}
		return nil, err
	}

	// The hold entry starts unarmed; worker completion sets the release date
	// and only then can it mature.
	entry := &models.LedgerEntry{
		WorkerID: workerID,
		JobID:    jobID,
		Type:     models.LedgerEntryCredit,
		Amount:   bid.EstimatedEarnings,
		Note:     fmt.Sprintf("escrow hold for job %d", jobID),
	}
	if err := retryOnce(func() error { return s.ledger.Create(ctx, entry) }); err != nil {
		logger.ErrorWithFields("Failed to create ledger hold entry", map[string]interface{}{
			"job_id": jobID, "worker_id": workerID, "error": err.Error(),
		})
	}

	bid.Status = models.BidStatusAccepted
	bid.IsWinningBid = true
	if err := s.bids.Update(ctx, bid); err != nil {
		logger.Errorf("Failed to mark winning bid %d: %v", bidID, err)
	}
	if err := s.bids.RejectOthersForJob(ctx, jobID, bidID); err != nil {
		logger.Errorf("Failed to reject losing bids for job %d: %v", jobID, err)
	}

	s.notifier.Notify(ctx, worker.Email, notify.KindBidAccepted, map[string]interface{}{
		"job_id": jobID, "bid_id": bidID, "price": price,
	})
	s.notifyLosingBidders(ctx, jobID, bidID)
	events.Publish(events.Event{
		Topic:    events.TopicJobUpdate,
		JobID:    jobID,
		BidID:    bidID,
		WorkerID: workerID,
		Status:   job.Status.String(),
	})

	return job, nil
}

// MarkWorkerCompleted records that the assigned worker finished the job.
// Rejected when the current date precedes the scheduled date; the comparison
// is date-only, time of day is ignored.
func (s *Job) MarkWorkerCompleted(ctx context.Context, jobID, workerID uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.Status != models.JobStatusAssigned {
		return nil, invalidStateErr(job.Status, "job is not assigned")
	}
	if job.AssignedWorkerID == nil || *job.AssignedWorkerID != workerID {
		return nil, fmt.Errorf("%w: job %d is not assigned to worker %d", ErrUnauthorized, jobID, workerID)
	}

	now := time.Now()
	if dateOnly(now).Before(dateOnly(job.ScheduledAt)) {
		return nil, invalidStateErr(job.Status, "job cannot be completed before its scheduled date")
	}

	releaseDate := now.Add(HoldWindow)
	job.Status = models.JobStatusWorkerCompleted
	job.WorkerMarkedAt = &now
	job.ReleaseDate = &releaseDate
	job.Append(models.AuditActionWorkerCompleted, models.ActorWorker, workerID, now, "")

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusAssigned); err != nil {
		if errors.Is(err, repos.ErrStaleTransition) {
			current, _ := s.jobs.GetByID(ctx, jobID)
			status := models.JobStatusUnknown
			if current != nil {
				status = current.Status
			}
			return nil, invalidStateErr(status, "job state changed concurrently")
		}
		return nil, err
	}

	if err := s.ledger.UpdateAvailabilityByJob(ctx, jobID, releaseDate); err != nil {
		logger.Errorf("Failed to update ledger availability for job %d: %v", jobID, err)
	}

	if worker, err := s.workers.GetByID(ctx, workerID); err == nil {
		s.notifier.Notify(ctx, worker.Email, notify.KindWorkerCompleted, map[string]interface{}{
			"job_id": jobID, "release_date": releaseDate,
		})
	}
	s.notifier.Notify(ctx, notify.Customer(job.CustomerID), notify.KindWorkerCompleted, map[string]interface{}{
		"job_id": jobID, "release_date": releaseDate,
	})
	events.Publish(events.Event{
		Topic:    events.TopicJobUpdate,
		JobID:    jobID,
		WorkerID: workerID,
		Status:   job.Status.String(),
	})

	return job, nil
}

// ConfirmCompletion records the customer's explicit confirmation. A job the
// scheduler already auto-confirmed is a no-op, not an error.
func (s *Job) ConfirmCompletion(ctx context.Context, jobID, customerID uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.CustomerID != customerID {
		return nil, fmt.Errorf("%w: job %d does not belong to customer %d", ErrUnauthorized, jobID, customerID)
	}
	if job.Status == models.JobStatusCompleted {
		return job, nil
	}
	if job.Status != models.JobStatusWorkerCompleted {
		return nil, invalidStateErr(job.Status, "job is not awaiting confirmation")
	}

	now := time.Now()
	job.Status = models.JobStatusCompleted
	job.CustomerConfirmedAt = &now
	job.PaymentStatus = models.PaymentStatusPendingRelease
	job.Append(models.AuditActionCustomerConfirmed, models.ActorCustomer, customerID, now, "")

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusWorkerCompleted); err != nil {
		if errors.Is(err, repos.ErrStaleTransition) {
			// The scheduler may have auto-confirmed first; that is a no-op.
			current, getErr := s.jobs.GetByID(ctx, jobID)
			if getErr == nil && current.Status == models.JobStatusCompleted {
				return current, nil
			}
			status := models.JobStatusUnknown
			if current != nil {
				status = current.Status
			}
			return nil, invalidStateErr(status, "job state changed concurrently")
		}
		return nil, err
	}

	s.notifyCompleted(ctx, job)
	return job, nil
}

// AutoConfirm is the scheduler's confirmation path for a stale
// worker_completed job. Racing an explicit customer confirmation is a no-op.
func (s *Job) AutoConfirm(ctx context.Context, jobID uint, now time.Time) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.Status == models.JobStatusCompleted {
		return job, nil
	}
	if job.Status != models.JobStatusWorkerCompleted {
		return nil, invalidStateErr(job.Status, "job is not awaiting confirmation")
	}
	if job.ReleaseDate == nil || job.ReleaseDate.After(now) {
		return nil, invalidStateErr(job.Status, "hold window has not elapsed")
	}

	job.Status = models.JobStatusCompleted
	job.AutoConfirmedAt = &now
	job.PaymentStatus = models.PaymentStatusPendingRelease
	job.Append(models.AuditActionAutoConfirmed, models.ActorSystem, 0, now, "hold window elapsed")

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusWorkerCompleted); err != nil {
		if errors.Is(err, repos.ErrStaleTransition) {
			current, getErr := s.jobs.GetByID(ctx, jobID)
			if getErr == nil && current.Status == models.JobStatusCompleted {
				return current, nil
			}
			status := models.JobStatusUnknown
			if current != nil {
				status = current.Status
			}
			return nil, invalidStateErr(status, "job state changed concurrently")
		}
		return nil, err
	}

	s.notifyCompleted(ctx, job)
	return job, nil
}

// FileDispute raises a customer dispute on a worker-completed job and
// freezes the job's escrow entries.
func (s *Job) FileDispute(ctx context.Context, jobID, customerID uint, reason string) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.CustomerID != customerID {
		return nil, fmt.Errorf("%w: job %d does not belong to customer %d", ErrUnauthorized, jobID, customerID)
	}
	if job.Status != models.JobStatusWorkerCompleted {
		return nil, invalidStateErr(job.Status, "only worker-completed jobs can be disputed")
	}

	now := time.Now()
	job.Status = models.JobStatusDispute
	job.DisputedAt = &now
	job.Append(models.AuditActionDisputeFiled, models.ActorCustomer, customerID, now, reason)

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusWorkerCompleted); err != nil {
		if errors.Is(err, repos.ErrStaleTransition) {
			current, _ := s.jobs.GetByID(ctx, jobID)
			status := models.JobStatusUnknown
			if current != nil {
				status = current.Status
			}
			return nil, conflictErr(status, "job is no longer disputable")
		}
		return nil, err
	}

	// Freeze escrow: blocked entries never auto-release.
	if err := s.ledger.SetBlockedByJob(ctx, jobID, true); err != nil {
		logger.Errorf("Failed to block ledger entries for disputed job %d: %v", jobID, err)
	}

	if job.AssignedWorkerID != nil {
		if worker, err := s.workers.GetByID(ctx, *job.AssignedWorkerID); err == nil {
			s.notifier.Notify(ctx, worker.Email, notify.KindDisputeFiled, map[string]interface{}{
				"job_id": jobID, "reason": reason,
			})
		}
	}
	s.notifier.Notify(ctx, notify.Admin, notify.KindDisputeFiled, map[string]interface{}{
		"job_id": jobID, "reason": reason,
	})
	events.Publish(events.Event{
		Topic:  events.TopicJobUpdate,
		JobID:  jobID,
		Status: job.Status.String(),
	})

	return job, nil
}

// TriageDispute moves a customer-raised dispute into admin triage
func (s *Job) TriageDispute(ctx context.Context, jobID, adminID uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.Status != models.JobStatusDispute {
		return nil, invalidStateErr(job.Status, "job has no open dispute")
	}

	now := time.Now()
	job.Status = models.JobStatusDisputed
	job.Append(models.AuditActionDisputeTriaged, models.ActorAdmin, adminID, now, "")

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusDispute); err != nil {
		return nil, err
	}

	events.Publish(events.Event{
		Topic:  events.TopicJobUpdate,
		JobID:  jobID,
		Status: job.Status.String(),
	})
	return job, nil
}

// ResolveDispute closes a triaged dispute. Release resolves in the worker's
// favor: the escrow unfreezes and matures normally. Refund resolves in the
// customer's favor: the gateway refunds the hold and the ledger entries stay
// blocked as voided records.
func (s *Job) ResolveDispute(ctx context.Context, jobID, adminID uint, releaseToWorker bool, note string) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.Status != models.JobStatusDispute && job.Status != models.JobStatusDisputed {
		return nil, invalidStateErr(job.Status, "job has no dispute to resolve")
	}

	now := time.Now()
	if releaseToWorker {
		job.Status = models.JobStatusCompleted
		job.PaymentStatus = models.PaymentStatusPendingRelease
		job.Append(models.AuditActionDisputeResolved, models.ActorAdmin, adminID, now, note)

		if err := s.jobs.CommitTransition(ctx, job, models.JobStatusDispute, models.JobStatusDisputed); err != nil {
			return nil, err
		}
		if err := s.ledger.SetBlockedByJob(ctx, jobID, false); err != nil {
			logger.Errorf("Failed to unblock ledger entries for job %d: %v", jobID, err)
		}
		s.notifyCompleted(ctx, job)
		return job, nil
	}

	if job.EscrowRef != "" && job.AssignedPrice != nil {
		if err := s.gateway.Refund(ctx, job.EscrowRef, *job.AssignedPrice); err != nil {
			return nil, fmt.Errorf("%w: refund failed: %v", ErrUpstreamFailure, err)
		}
	}
	job.Status = models.JobStatusCancelled
	job.PaymentStatus = models.PaymentStatusRefunded
	job.CancelReason = note
	job.CancelledBy = models.ActorAdmin
	job.CancelledAt = &now
	job.Append(models.AuditActionCancelled, models.ActorAdmin, adminID, now, note)

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusDispute, models.JobStatusDisputed); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.Customer(job.CustomerID), notify.KindJobCancelled, map[string]interface{}{
		"job_id": jobID, "reason": note,
	})
	events.Publish(events.Event{
		Topic:  events.TopicJobUpdate,
		JobID:  jobID,
		Status: job.Status.String(),
	})
	return job, nil
}

// Cancel terminates a job on customer or admin initiative. An assigned job's
// escrow hold is refunded and its bids invalidated. Terminal.
func (s *Job) Cancel(ctx context.Context, jobID, actorID uint, role models.ActorRole, reason string) (*models.Job, error) {
	if role != models.ActorCustomer && role != models.ActorAdmin {
		return nil, fmt.Errorf("%w: only customers and admins can cancel jobs", ErrUnauthorized)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if role == models.ActorCustomer && job.CustomerID != actorID {
		return nil, fmt.Errorf("%w: job %d does not belong to customer %d", ErrUnauthorized, jobID, actorID)
	}

	allowedFrom := []models.JobStatus{
		models.JobStatusPending,
		models.JobStatusAssigned,
		models.JobStatusReopened,
		models.JobStatusWaitlisted,
	}
	allowed := false
	for _, st := range allowedFrom {
		if job.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, invalidStateErr(job.Status, "job cannot be cancelled from its current state")
	}

	now := time.Now()
	assignedWorker := job.AssignedWorkerID
	escrowRef := job.EscrowRef
	var refundAmount float64
	if escrowRef != "" && job.AssignedPrice != nil {
		refundAmount = *job.AssignedPrice
		job.PaymentStatus = models.PaymentStatusRefunded
	}
	job.Status = models.JobStatusCancelled
	job.CancelReason = reason
	job.CancelledBy = role
	job.CancelledAt = &now
	job.Append(models.AuditActionCancelled, role, actorID, now, reason)

	if err := s.jobs.CommitTransition(ctx, job, allowedFrom...); err != nil {
		if errors.Is(err, repos.ErrStaleTransition) {
			current, _ := s.jobs.GetByID(ctx, jobID)
			status := models.JobStatusUnknown
			if current != nil {
				status = current.Status
			}
			return nil, conflictErr(status, "job state changed concurrently")
		}
		return nil, err
	}

	// Refund only after the committed transition; a guard miss above means
	// no money moved. A failed refund here is a reconciliation item, the
	// cancellation stands.
	if escrowRef != "" && refundAmount > 0 {
		if err := s.gateway.Refund(ctx, escrowRef, refundAmount); err != nil {
			logger.ErrorWithFields("Failed to refund escrow for cancelled job", map[string]interface{}{
				"job_id": jobID, "escrow_ref": escrowRef, "error": err.Error(),
			})
		}
	}

	if err := s.bids.RejectAllForJob(ctx, jobID); err != nil {
		logger.Errorf("Failed to invalidate bids for cancelled job %d: %v", jobID, err)
	}
	if err := s.ledger.SetBlockedByJob(ctx, jobID, true); err != nil {
		logger.Errorf("Failed to block ledger entries for cancelled job %d: %v", jobID, err)
	}

	if assignedWorker != nil {
		if worker, err := s.workers.GetByID(ctx, *assignedWorker); err == nil {
			s.notifier.Notify(ctx, worker.Email, notify.KindJobCancelled, map[string]interface{}{
				"job_id": jobID, "reason": reason,
			})
		}
	}
	s.notifier.Notify(ctx, notify.Customer(job.CustomerID), notify.KindJobCancelled, map[string]interface{}{
		"job_id": jobID, "reason": reason,
	})
	events.Publish(events.Event{
		Topic:  events.TopicJobUpdate,
		JobID:  jobID,
		Status: job.Status.String(),
	})

	return job, nil
}

// WorkerCancel handles the assigned worker backing out: the reliability
// policy escalates, the escrow hold refunds, all bids invalidate and the job
// reopens for bidding.
func (s *Job) WorkerCancel(ctx context.Context, jobID, workerID uint, reason string) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.Status != models.JobStatusAssigned {
		return nil, invalidStateErr(job.Status, "job is not assigned")
	}
	if job.AssignedWorkerID == nil || *job.AssignedWorkerID != workerID {
		return nil, fmt.Errorf("%w: job %d is not assigned to worker %d", ErrUnauthorized, jobID, workerID)
	}

	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("%w: worker %d", ErrNotFound, workerID)
	}

	// Bidders to invite back, captured before invalidation.
	priorBids, err := s.bids.ListByJob(ctx, jobID)
	if err != nil {
		logger.Errorf("Failed to list bids for reopening job %d: %v", jobID, err)
	}

	now := time.Now()
	escrowRef := job.EscrowRef
	var refundAmount float64
	if escrowRef != "" && job.AssignedPrice != nil {
		refundAmount = *job.AssignedPrice
	}
	job.Status = models.JobStatusReopened
	job.AssignedWorkerID = nil
	job.AssignedPrice = nil
	job.EscrowRef = ""
	job.PaymentStatus = models.PaymentStatusRefunded
	job.WorkerMarkedAt = nil
	job.ReleaseDate = nil
	job.RepostCount++
	job.CancelReason = reason
	job.CancelledBy = models.ActorWorker
	job.CancelledAt = &now
	job.Append(models.AuditActionWorkerCancelled, models.ActorWorker, workerID, now, reason)

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusAssigned); err != nil {
		if errors.Is(err, repos.ErrStaleTransition) {
			current, _ := s.jobs.GetByID(ctx, jobID)
			status := models.JobStatusUnknown
			if current != nil {
				status = current.Status
			}
			return nil, conflictErr(status, "job state changed concurrently")
		}
		return nil, err
	}

	// Refund only after the committed transition; a guard miss above means
	// no money moved. A failed refund here is a reconciliation item.
	if escrowRef != "" && refundAmount > 0 {
		if err := s.gateway.Refund(ctx, escrowRef, refundAmount); err != nil {
			logger.ErrorWithFields("Failed to refund escrow for reopened job", map[string]interface{}{
				"job_id": jobID, "escrow_ref": escrowRef, "error": err.Error(),
			})
		}
	}

	// Reliability escalation. The counter is monotonic; only admin action
	// resets it.
	worker.CancellationCount++
	worker.LastCancellationAt = &now
	esc := Escalate(worker.CancellationCount)
	if esc.SuspendFor != nil {
		until := now.Add(*esc.SuspendFor)
		worker.Status = models.WorkerStatusSuspended
		worker.SuspendedUntil = &until
	}
	if esc.WorkerStatus == models.WorkerStatusBanned {
		worker.Status = models.WorkerStatusBanned
		worker.RequiresAdminReview = true
	}
	if err := s.workers.Update(ctx, worker); err != nil {
		logger.Errorf("Failed to update reliability state for worker %d: %v", workerID, err)
	}

	if err := s.bids.RejectAllForJob(ctx, jobID); err != nil {
		logger.Errorf("Failed to invalidate bids for reopened job %d: %v", jobID, err)
	}
	if err := s.ledger.SetBlockedByJob(ctx, jobID, true); err != nil {
		logger.Errorf("Failed to void ledger entries for reopened job %d: %v", jobID, err)
	}

	s.notifier.Notify(ctx, notify.Customer(job.CustomerID), notify.KindJobReopened, map[string]interface{}{
		"job_id": jobID, "reason": reason,
	})
	switch {
	case worker.Status == models.WorkerStatusBanned:
		s.notifier.Notify(ctx, worker.Email, notify.KindWorkerBanned, map[string]interface{}{
			"job_id": jobID, "cancellation_count": worker.CancellationCount,
		})
	case worker.Status == models.WorkerStatusSuspended:
		s.notifier.Notify(ctx, worker.Email, notify.KindWorkerSuspended, map[string]interface{}{
			"job_id": jobID, "suspended_until": worker.SuspendedUntil,
		})
	default:
		s.notifier.Notify(ctx, worker.Email, notify.KindJobCancelled, map[string]interface{}{
			"job_id": jobID, "warning": true,
		})
	}
	if esc.NotifyAdmin {
		s.notifier.Notify(ctx, notify.Admin, notify.KindAdminEscalation, map[string]interface{}{
			"worker_id": workerID, "cancellation_count": worker.CancellationCount,
		})
	}
	for _, prior := range priorBids {
		if prior.WorkerID == workerID {
			continue
		}
		if bidder, err := s.workers.GetByID(ctx, prior.WorkerID); err == nil {
			s.notifier.Notify(ctx, bidder.Email, notify.KindReopenInvitation, map[string]interface{}{
				"job_id": jobID,
			})
		}
	}
	events.Publish(events.Event{
		Topic:  events.TopicJobUpdate,
		JobID:  jobID,
		Status: job.Status.String(),
	})

	return job, nil
}

// Waitlist records that the matching collaborator found no eligible workers
// for a pending job
func (s *Job) Waitlist(ctx context.Context, jobID uint, reason string) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if job.Status != models.JobStatusPending {
		return nil, invalidStateErr(job.Status, "only pending jobs can be waitlisted")
	}

	now := time.Now()
	job.Status = models.JobStatusWaitlisted
	job.WaitlistReason = reason
	job.Append(models.AuditActionWaitlisted, models.ActorSystem, 0, now, reason)

	if err := s.jobs.CommitTransition(ctx, job, models.JobStatusPending); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.Customer(job.CustomerID), notify.KindJobWaitlisted, map[string]interface{}{
		"job_id": jobID, "reason": reason,
	})
	events.Publish(events.Event{
		Topic:  events.TopicJobUpdate,
		JobID:  jobID,
		Status: job.Status.String(),
	})
	return job, nil
}

func (s *Job) notifyCompleted(ctx context.Context, job *models.Job) {
	if job.AssignedWorkerID != nil {
		if worker, err := s.workers.GetByID(ctx, *job.AssignedWorkerID); err == nil {
			s.notifier.Notify(ctx, worker.Email, notify.KindJobCompleted, map[string]interface{}{
				"job_id": job.ID,
			})
		}
	}
	s.notifier.Notify(ctx, notify.Customer(job.CustomerID), notify.KindJobCompleted, map[string]interface{}{
		"job_id": job.ID,
	})
	events.Publish(events.Event{
		Topic:  events.TopicJobUpdate,
		JobID:  job.ID,
		Status: job.Status.String(),
	})
}

func (s *Job) notifyLosingBidders(ctx context.Context, jobID, winningBidID uint) {
	bids, err := s.bids.ListByJob(ctx, jobID)
	if err != nil {
		logger.Errorf("Failed to list bids for job %d: %v", jobID, err)
		return
	}
	for _, b := range bids {
		if b.ID == winningBidID {
			continue
		}
		if worker, err := s.workers.GetByID(ctx, b.WorkerID); err == nil {
			s.notifier.Notify(ctx, worker.Email, notify.KindBidRejected, map[string]interface{}{
				"job_id": jobID, "bid_id": b.ID,
			})
		}
	}
}

// dateOnly truncates a time to its calendar date in local time
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
