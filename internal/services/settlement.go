package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/db/repos"
	"github.com/gigbridge/gigbridge/internal/logger"
	"github.com/gigbridge/gigbridge/internal/notify"
	"github.com/gigbridge/gigbridge/internal/payments"
)

// sweepBatchSize caps how many entities one sweep pass picks up per duty
const sweepBatchSize = 100

// Settlement runs the periodic sweep that advances time-dependent state:
// auto-confirming stale completions and maturing escrow holds into released
// wallet balance. Both duties are idempotent and isolate per-entity failures.
type Settlement struct {
	jobs     *repos.JobRepository
	ledger   *repos.LedgerRepository
	workers  *repos.WorkerRepository
	jobSvc   *Job
	gateway  payments.Gateway
	notifier notify.Dispatcher
}

// NewSettlementService creates a new instance of the settlement service
func NewSettlementService(
	jobs *repos.JobRepository,
	ledger *repos.LedgerRepository,
	workers *repos.WorkerRepository,
	jobSvc *Job,
	gateway payments.Gateway,
	notifier notify.Dispatcher,
) *Settlement {
	return &Settlement{
		jobs:     jobs,
		ledger:   ledger,
		workers:  workers,
		jobSvc:   jobSvc,
		gateway:  gateway,
		notifier: notifier,
	}
}

// SweepStats summarizes one sweep pass
type SweepStats struct {
	AutoConfirmed   int `json:"auto_confirmed"`
	EntriesReleased int `json:"entries_released"`
	Errors          int `json:"errors"`
}

// Sweep runs both scheduler duties once against the given wall-clock time.
// Re-running it on an unchanged data set is a no-op.
func (s *Settlement) Sweep(ctx context.Context, now time.Time) SweepStats {
	stats := SweepStats{}
	s.autoConfirm(ctx, now, &stats)
	s.matureLedger(ctx, now, &stats)
	return stats
}

// autoConfirm completes worker_completed jobs whose hold window elapsed with
// no dispute
func (s *Settlement) autoConfirm(ctx context.Context, now time.Time, stats *SweepStats) {
	jobs, err := s.jobs.ListAutoConfirmable(ctx, now, sweepBatchSize)
	if err != nil {
		logger.Errorf("Sweep: failed to list auto-confirmable jobs: %v", err)
		stats.Errors++
		return
	}

	for _, job := range jobs {
		if _, err := s.jobSvc.AutoConfirm(ctx, job.ID, now); err != nil {
			// A state that moved on since listing is not a failure.
			if errors.Is(err, ErrInvalidState) {
				continue
			}
			logger.ErrorWithFields("Sweep: auto-confirm failed", map[string]interface{}{
				"job_id": job.ID, "error": err.Error(),
			})
			stats.Errors++
			continue
		}
		stats.AutoConfirmed++
	}
}

// matureLedger releases unblocked entries whose availability date has passed,
// crediting the worker's spendable balance
func (s *Settlement) matureLedger(ctx context.Context, now time.Time, stats *SweepStats) {
	entries, err := s.ledger.ListMature(ctx, now, sweepBatchSize)
	if err != nil {
		logger.Errorf("Sweep: failed to list mature ledger entries: %v", err)
		stats.Errors++
		return
	}

	for _, entry := range entries {
		released, err := s.releaseEntry(ctx, entry, now)
		if err != nil {
			logger.ErrorWithFields("Sweep: ledger maturation failed", map[string]interface{}{
				"entry_id": entry.ID, "worker_id": entry.WorkerID, "error": err.Error(),
			})
			stats.Errors++
			continue
		}
		if released {
			stats.EntriesReleased++
		}
	}
}

// releaseEntry moves one mature hold into the worker's spendable balance.
// Funds move only once the job's payment reached a releasable state; a hold
// on a job that never got confirmed stays put.
func (s *Settlement) releaseEntry(ctx context.Context, entry models.LedgerEntry, now time.Time) (bool, error) {
	if !entry.Mature(now) {
		return false, nil
	}

	job, err := s.jobs.GetByID(ctx, entry.JobID)
	if err != nil {
		return false, fmt.Errorf("failed to load job %d for entry %d: %w", entry.JobID, entry.ID, err)
	}
	if job.PaymentStatus != models.PaymentStatusPendingRelease &&
		job.PaymentStatus != models.PaymentStatusReleased {
		return false, nil
	}

	// Release the funds at the gateway before crediting the wallet; a
	// gateway failure leaves the entry unreleased for the next sweep.
	if job.EscrowRef != "" && job.PaymentStatus != models.PaymentStatusReleased {
		if err := s.gateway.ReleaseToWorker(ctx, job.EscrowRef); err != nil {
			return false, err
		}
	}

	released, err := s.ledger.Release(ctx, entry.ID)
	if err != nil {
		return false, err
	}
	if !released {
		// A concurrent sweep or an admin block got here first.
		return false, nil
	}

	if _, err := s.jobs.UpdatePaymentStatus(ctx, job.ID, models.PaymentStatusReleased,
		models.PaymentStatusPendingRelease); err != nil {
		logger.Errorf("Sweep: failed to update payment status for job %d: %v", job.ID, err)
	}

	if worker, err := s.workers.GetByID(ctx, entry.WorkerID); err == nil {
		s.notifier.Notify(ctx, worker.Email, notify.KindPaymentReleased, map[string]interface{}{
			"job_id": entry.JobID, "amount": entry.Amount,
		})
	}
	return true, nil
}
