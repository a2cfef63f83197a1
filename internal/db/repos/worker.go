package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gigbridge/gigbridge/internal/db/models"
)

// WorkerRepository handles database operations for workers
type WorkerRepository struct {
	db *gorm.DB
}

// NewWorkerRepository creates a new instance of WorkerRepository
func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// Create creates a new worker in the database
func (r *WorkerRepository) Create(ctx context.Context, worker *models.Worker) error {
	return r.db.WithContext(ctx).Create(worker).Error
}

// GetByID retrieves a worker by ID from the database
func (r *WorkerRepository) GetByID(ctx context.Context, id uint) (*models.Worker, error) {
	var worker models.Worker
	err := r.db.WithContext(ctx).First(&worker, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("worker not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &worker, nil
}

// ListByStatus retrieves workers in the given status, newest first.
// An empty status lists all workers.
func (r *WorkerRepository) ListByStatus(ctx context.Context, status models.WorkerStatus, opts *models.ListOptions) ([]models.Worker, error) {
	var workers []models.Worker
	err := r.db.WithContext(ctx).
		Where(&models.Worker{Status: status}).
		Limit(limitOf(opts)).Offset(offsetOf(opts)).
		Order("created_at DESC").
		Find(&workers).Error
	return workers, err
}

// Update persists all fields of an existing worker
func (r *WorkerRepository) Update(ctx context.Context, worker *models.Worker) error {
	return r.db.WithContext(ctx).Save(worker).Error
}

// AddToBalance atomically increments the worker's spendable wallet balance
func (r *WorkerRepository) AddToBalance(ctx context.Context, workerID uint, amount float64) error {
	res := r.db.WithContext(ctx).Model(&models.Worker{}).
		Where("id = ?", workerID).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("worker not found: %d", workerID)
	}
	return nil
}
