package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gigbridge/gigbridge/internal/db"
	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/db/repos"
	"github.com/gigbridge/gigbridge/internal/events"
	"github.com/gigbridge/gigbridge/internal/notify"
)

// Bid handles bid-related operations: submission, price-change negotiation
// and withdrawal. Acceptance lives on the Job service because it is a job
// lifecycle transition.
type Bid struct {
	bids     *repos.BidRepository
	jobs     *repos.JobRepository
	workers  *repos.WorkerRepository
	notifier notify.Dispatcher
}

// NewBidService creates a new instance of the bid service
func NewBidService(bids *repos.BidRepository, jobs *repos.JobRepository, workers *repos.WorkerRepository, notifier notify.Dispatcher) *Bid {
	return &Bid{
		bids:     bids,
		jobs:     jobs,
		workers:  workers,
		notifier: notifier,
	}
}

// Submit creates a worker's bid on a job. A worker holds at most one active
// bid per job; on a reopened job the prior bid is invalidated and replaced.
func (s *Bid) Submit(ctx context.Context, jobID, workerID uint, price float64, message string) (*models.Bid, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if !job.Status.IsBiddable() {
		return nil, invalidStateErr(job.Status, "job is not open for bidding")
	}

	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("%w: worker %d", ErrNotFound, workerID)
	}
	if worker.IsRestricted(time.Now()) {
		return nil, fmt.Errorf("%w: worker %d is suspended or banned", ErrUnauthorized, workerID)
	}

	existing, err := s.bids.GetActiveByJobAndWorker(ctx, jobID, workerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if job.Status != models.JobStatusReopened {
			return nil, conflictErr(job.Status, fmt.Sprintf("worker %d already bid on job %d", workerID, jobID))
		}
		// Reopening invalidates prior bids and permits replacement.
		existing.Status = models.BidStatusRejected
		if err := s.bids.Update(ctx, existing); err != nil {
			return nil, err
		}
	}

	earnings := EstimateEarnings(price)
	now := time.Now()
	bid := &models.Bid{
		JobID:             jobID,
		WorkerID:          workerID,
		Price:             price,
		EstimatedEarnings: earnings,
		Message:           message,
		Status:            models.BidStatusPending,
		ChangeStatus:      models.ChangeStatusNone,
		History: models.BidHistory{
			{Price: price, Earnings: earnings, At: now},
		},
	}
	if err := retryOnce(func() error { return s.bids.Create(ctx, bid) }); err != nil {
		// A concurrent submit can slip past the read above; the partial
		// unique index on (job_id, worker_id) catches it.
		if db.IsDuplicateKeyError(err) {
			return nil, conflictErr(job.Status, fmt.Sprintf("worker %d already bid on job %d", workerID, jobID))
		}
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}

	s.notifier.Notify(ctx, worker.Email, notify.KindBidSubmitted, map[string]interface{}{
		"job_id": jobID, "bid_id": bid.ID, "price": price, "earnings": earnings,
	})
	s.notifier.Notify(ctx, notify.Customer(job.CustomerID), notify.KindBidReceived, map[string]interface{}{
		"job_id": jobID, "bid_id": bid.ID, "price": price,
	})
	events.Publish(events.Event{
		Topic:    events.TopicBidReceived,
		JobID:    jobID,
		BidID:    bid.ID,
		WorkerID: workerID,
		Status:   job.Status.String(),
	})

	return bid, nil
}

// RequestPriceChange opens a price change request on a pending bid. Only one
// change request may be pending at a time.
func (s *Bid) RequestPriceChange(ctx context.Context, bidID, workerID uint, newPrice float64, message string) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("%w: bid %d", ErrNotFound, bidID)
	}
	if bid.WorkerID != workerID {
		return nil, fmt.Errorf("%w: bid %d does not belong to worker %d", ErrUnauthorized, bidID, workerID)
	}
	if bid.Status != models.BidStatusPending {
		return nil, fmt.Errorf("%w: bid is no longer actionable", ErrInvalidState)
	}
	if bid.HasPendingChange() {
		return nil, fmt.Errorf("%w: a change request is already pending", ErrInvalidState)
	}

	job, err := s.jobs.GetByID(ctx, bid.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, bid.JobID)
	}
	if !job.Status.IsBiddable() {
		return nil, invalidStateErr(job.Status, "job is no longer open for negotiation")
	}

	now := time.Now()
	earnings := EstimateEarnings(newPrice)
	bid.ChangeStatus = models.ChangeStatusPending
	bid.NewPrice = &newPrice
	bid.NewEarnings = &earnings
	bid.ChangeMessage = message
	bid.ChangeRequestedAt = &now
	bid.ChangeRespondedAt = nil
	if err := s.bids.Update(ctx, bid); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notify.Customer(job.CustomerID), notify.KindChangeRequested, map[string]interface{}{
		"job_id": job.ID, "bid_id": bid.ID, "new_price": newPrice,
	})
	events.Publish(events.Event{
		Topic:    events.TopicBidChangeUpdate,
		JobID:    job.ID,
		BidID:    bid.ID,
		WorkerID: bid.WorkerID,
		Status:   job.Status.String(),
	})

	return bid, nil
}

// CancelPendingChangeRequest clears a pending change request. Only the bid's
// owning worker may cancel it.
func (s *Bid) CancelPendingChangeRequest(ctx context.Context, bidID, workerID uint) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("%w: bid %d", ErrNotFound, bidID)
	}
	if bid.WorkerID != workerID {
		return nil, fmt.Errorf("%w: bid %d does not belong to worker %d", ErrUnauthorized, bidID, workerID)
	}
	if !bid.HasPendingChange() {
		return nil, fmt.Errorf("%w: no change request is pending", ErrInvalidState)
	}

	bid.ChangeStatus = models.ChangeStatusNone
	bid.NewPrice = nil
	bid.NewEarnings = nil
	bid.ChangeMessage = ""
	bid.ChangeRequestedAt = nil
	bid.ChangeRespondedAt = nil
	if err := s.bids.Update(ctx, bid); err != nil {
		return nil, err
	}

	events.Publish(events.Event{
		Topic:    events.TopicBidChangeUpdate,
		JobID:    bid.JobID,
		BidID:    bid.ID,
		WorkerID: bid.WorkerID,
	})

	return bid, nil
}

// RespondToChangeRequest records the customer's decision on a pending change
// request. Acceptance rewrites the bid price and earnings and appends to the
// revision history.
func (s *Bid) RespondToChangeRequest(ctx context.Context, bidID, customerID uint, accept bool) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("%w: bid %d", ErrNotFound, bidID)
	}
	job, err := s.jobs.GetByID(ctx, bid.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, bid.JobID)
	}
	if job.CustomerID != customerID {
		return nil, fmt.Errorf("%w: job %d does not belong to customer %d", ErrUnauthorized, job.ID, customerID)
	}
	if !bid.HasPendingChange() {
		return nil, fmt.Errorf("%w: no change request is pending", ErrInvalidState)
	}

	now := time.Now()
	bid.ChangeRespondedAt = &now
	if accept {
		bid.Price = *bid.NewPrice
		bid.EstimatedEarnings = *bid.NewEarnings
		bid.History = append(bid.History, models.BidRevision{
			Price:    bid.Price,
			Earnings: bid.EstimatedEarnings,
			At:       now,
		})
		bid.ChangeStatus = models.ChangeStatusAccepted
	} else {
		bid.ChangeStatus = models.ChangeStatusRejected
	}
	if err := s.bids.Update(ctx, bid); err != nil {
		return nil, err
	}

	if worker, err := s.workers.GetByID(ctx, bid.WorkerID); err == nil {
		s.notifier.Notify(ctx, worker.Email, notify.KindChangeResponded, map[string]interface{}{
			"job_id": job.ID, "bid_id": bid.ID, "accepted": accept,
		})
	}
	events.Publish(events.Event{
		Topic:    events.TopicBidChangeUpdate,
		JobID:    job.ID,
		BidID:    bid.ID,
		WorkerID: bid.WorkerID,
		Status:   job.Status.String(),
	})

	return bid, nil
}

// Withdraw retracts a worker's pending bid
func (s *Bid) Withdraw(ctx context.Context, bidID, workerID uint) error {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return fmt.Errorf("%w: bid %d", ErrNotFound, bidID)
	}
	if bid.WorkerID != workerID {
		return fmt.Errorf("%w: bid %d does not belong to worker %d", ErrUnauthorized, bidID, workerID)
	}
	if bid.Status != models.BidStatusPending {
		return fmt.Errorf("%w: only pending bids can be withdrawn", ErrInvalidState)
	}

	bid.Status = models.BidStatusRejected
	bid.CancelledByWorker = true
	return s.bids.Update(ctx, bid)
}

// Get retrieves a bid by ID
func (s *Bid) Get(ctx context.Context, bidID uint) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("%w: bid %d", ErrNotFound, bidID)
	}
	return bid, nil
}

// ListByJob retrieves all bids on a job
func (s *Bid) ListByJob(ctx context.Context, jobID uint) ([]models.Bid, error) {
	return s.bids.ListByJob(ctx, jobID)
}
