package services

import (
	"context"
	"fmt"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/db/repos"
)

// Account handles worker accounts and their wallet views, plus the
// administrative ledger and reliability actions.
type Account struct {
	workers *repos.WorkerRepository
	ledger  *repos.LedgerRepository
}

// NewAccountService creates a new instance of the account service
func NewAccountService(workers *repos.WorkerRepository, ledger *repos.LedgerRepository) *Account {
	return &Account{workers: workers, ledger: ledger}
}

// Register creates a new worker account in pending status
func (s *Account) Register(ctx context.Context, name, email string) (*models.Worker, error) {
	worker := &models.Worker{
		Name:   name,
		Email:  email,
		Status: models.WorkerStatusPending,
	}
	if err := s.workers.Create(ctx, worker); err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}
	return worker, nil
}

// Get retrieves a worker by ID
func (s *Account) Get(ctx context.Context, workerID uint) (*models.Worker, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("%w: worker %d", ErrNotFound, workerID)
	}
	return worker, nil
}

// ListByStatus returns workers in the given status; empty lists all
func (s *Account) ListByStatus(ctx context.Context, status models.WorkerStatus, opts *models.ListOptions) ([]models.Worker, error) {
	return s.workers.ListByStatus(ctx, status, opts)
}

// Approve marks a pending worker approved (admin action)
func (s *Account) Approve(ctx context.Context, workerID uint) (*models.Worker, error) {
	worker, err := s.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	worker.Status = models.WorkerStatusApproved
	if err := s.workers.Update(ctx, worker); err != nil {
		return nil, err
	}
	return worker, nil
}

// WalletView is a worker's spendable balance plus the ledger behind it.
// Unreleased entries are informational holds, not yet in the balance.
type WalletView struct {
	WorkerID uint                 `json:"worker_id"`
	Balance  float64              `json:"balance"`
	Entries  []models.LedgerEntry `json:"entries"`
}

// Wallet returns the worker's wallet view
func (s *Account) Wallet(ctx context.Context, workerID uint, opts *models.ListOptions) (*WalletView, error) {
	worker, err := s.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListByWorker(ctx, workerID, opts)
	if err != nil {
		return nil, err
	}
	return &WalletView{
		WorkerID: workerID,
		Balance:  worker.WalletBalance,
		Entries:  entries,
	}, nil
}

// BlockLedgerEntry places an administrative block on an unreleased entry.
// A blocked entry never auto-releases regardless of time.
func (s *Account) BlockLedgerEntry(ctx context.Context, entryID uint) error {
	return s.ledger.SetBlocked(ctx, entryID, true)
}

// UnblockLedgerEntry clears the administrative block on an entry
func (s *Account) UnblockLedgerEntry(ctx context.Context, entryID uint) error {
	return s.ledger.SetBlocked(ctx, entryID, false)
}

// ResetCancellations clears a worker's reliability state. The cancellation
// counter only ever decreases through this admin action.
func (s *Account) ResetCancellations(ctx context.Context, workerID uint) (*models.Worker, error) {
	worker, err := s.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	worker.CancellationCount = 0
	worker.SuspendedUntil = nil
	worker.RequiresAdminReview = false
	if worker.Status == models.WorkerStatusSuspended || worker.Status == models.WorkerStatusBanned {
		worker.Status = models.WorkerStatusApproved
	}
	if err := s.workers.Update(ctx, worker); err != nil {
		return nil, err
	}
	return worker, nil
}
