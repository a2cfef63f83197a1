package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gigbridge/gigbridge/internal/db/models"
)

// BidRepository handles database operations for bids
type BidRepository struct {
	db *gorm.DB
}

// NewBidRepository creates a new instance of BidRepository
func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create creates a new bid in the database
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

// GetByID retrieves a bid by ID from the database
func (r *BidRepository) GetByID(ctx context.Context, id uint) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).First(&bid, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("bid not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return &bid, nil
}

// GetActiveByJobAndWorker retrieves the worker's non-invalidated bid on a job,
// or nil when none exists
func (r *BidRepository) GetActiveByJobAndWorker(ctx context.Context, jobID, workerID uint) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND worker_id = ? AND status <> ?", jobID, workerID, models.BidStatusRejected).
		First(&bid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return &bid, nil
}

// ListByJob retrieves all bids for a job, oldest first
func (r *BidRepository) ListByJob(ctx context.Context, jobID uint) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Where(&models.Bid{JobID: jobID}).
		Order("created_at ASC").
		Find(&bids).Error
	return bids, err
}

// ListByWorker retrieves a worker's bids, newest first
func (r *BidRepository) ListByWorker(ctx context.Context, workerID uint, opts *models.ListOptions) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Where(&models.Bid{WorkerID: workerID}).
		Limit(limitOf(opts)).Offset(offsetOf(opts)).
		Order("created_at DESC").
		Find(&bids).Error
	return bids, err
}

// Update persists all fields of an existing bid
func (r *BidRepository) Update(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Save(bid).Error
}

// GetWinningBid retrieves the winning bid for a job, or nil when none is set
func (r *BidRepository) GetWinningBid(ctx context.Context, jobID uint) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND is_winning_bid = ?", jobID, true).
		First(&bid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get winning bid: %w", err)
	}
	return &bid, nil
}

// RejectAllForJob invalidates every bid on the job and clears winning flags.
// Used when a job is reopened or cancelled.
func (r *BidRepository) RejectAllForJob(ctx context.Context, jobID uint) error {
	return r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":         models.BidStatusRejected,
			"is_winning_bid": false,
		}).Error
}

// RejectOthersForJob marks every bid on the job except the given one rejected
func (r *BidRepository) RejectOthersForJob(ctx context.Context, jobID, keepBidID uint) error {
	return r.db.WithContext(ctx).Model(&models.Bid{}).
		Where("job_id = ? AND id <> ?", jobID, keepBidID).
		Update("status", models.BidStatusRejected).Error
}
