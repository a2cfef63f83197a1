package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gigbridge/gigbridge/internal/db/models"
)

// LedgerRepository handles database operations for wallet ledger entries
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new instance of LedgerRepository
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create creates a new ledger entry in the database
func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByID retrieves a ledger entry by ID from the database
func (r *LedgerRepository) GetByID(ctx context.Context, id uint) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ledger entry not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

// ListByWorker retrieves a worker's ledger entries, newest first
func (r *LedgerRepository) ListByWorker(ctx context.Context, workerID uint, opts *models.ListOptions) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where(&models.LedgerEntry{WorkerID: workerID}).
		Limit(limitOf(opts)).Offset(offsetOf(opts)).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// ListMature returns unreleased, unblocked entries whose availability date
// has passed, for the settlement sweep. Unarmed entries are never listed.
func (r *LedgerRepository) ListMature(ctx context.Context, now time.Time, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("released = ? AND blocked = ? AND available_at IS NOT NULL AND available_at <= ?", false, false, now).
		Limit(limit).
		Order("available_at ASC").
		Find(&entries).Error
	return entries, err
}

// Release marks the entry released and credits the worker's wallet in one
// transaction. The guard on released/blocked makes re-running the sweep over
// the same entry a no-op; the boolean reports whether this call released it.
func (r *LedgerRepository) Release(ctx context.Context, entryID uint) (bool, error) {
	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.LedgerEntry
		if err := tx.First(&entry, entryID).Error; err != nil {
			return fmt.Errorf("failed to get ledger entry: %w", err)
		}

		res := tx.Model(&models.LedgerEntry{}).
			Where("id = ? AND released = ? AND blocked = ?", entryID, false, false).
			Update("released", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already released, or blocked in the meantime.
			return nil
		}

		amount := entry.Amount
		if entry.Type == models.LedgerEntryDebit {
			amount = -amount
		}
		if err := tx.Model(&models.Worker{}).
			Where("id = ?", entry.WorkerID).
			UpdateColumn("wallet_balance", gorm.Expr("wallet_balance + ?", amount)).Error; err != nil {
			return err
		}

		released = true
		return nil
	})
	return released, err
}

// UpdateAvailabilityByJob arms a job's unreleased, unblocked entries with a
// maturity date. Used when the worker marks completion and the release date
// becomes known.
func (r *LedgerRepository) UpdateAvailabilityByJob(ctx context.Context, jobID uint, availableAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("job_id = ? AND released = ? AND blocked = ?", jobID, false, false).
		Update("available_at", availableAt).Error
}

// SetBlocked sets or clears the administrative block on an entry.
// A released entry cannot be blocked.
func (r *LedgerRepository) SetBlocked(ctx context.Context, entryID uint, blocked bool) error {
	res := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("id = ? AND released = ?", entryID, false).
		Update("blocked", blocked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ledger entry %d not found or already released", entryID)
	}
	return nil
}

// SetBlockedByJob sets or clears the block on every unreleased entry of a job.
// Used when a dispute freezes or unfreezes the job's escrow.
func (r *LedgerRepository) SetBlockedByJob(ctx context.Context, jobID uint, blocked bool) error {
	return r.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("job_id = ? AND released = ?", jobID, false).
		Update("blocked", blocked).Error
}
