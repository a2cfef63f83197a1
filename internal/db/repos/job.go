// Package repos provides database access for the marketplace aggregates
package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gigbridge/gigbridge/internal/db/models"
)

// ErrStaleTransition is returned when a guarded status update finds the job
// already advanced by a concurrent writer. Callers treat it as "the other
// writer won" and must not re-apply side effects.
var ErrStaleTransition = errors.New("job status changed concurrently")

// JobRepository provides access to job-related database operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job in the database
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID
func (r *JobRepository) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ListByCustomer returns the jobs posted by a customer, newest first
func (r *JobRepository) ListByCustomer(ctx context.Context, customerID uint, opts *models.ListOptions) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where(&models.Job{CustomerID: customerID}).
		Limit(limitOf(opts)).Offset(offsetOf(opts)).
		Order(models.JobCreatedAtField + " DESC").
		Find(&jobs).Error
	return jobs, err
}

// ListByStatus returns jobs in the given status, newest first.
// An unknown status returns all jobs.
func (r *JobRepository) ListByStatus(ctx context.Context, status models.JobStatus, opts *models.ListOptions) ([]models.Job, error) {
	var jobs []models.Job
	qry := &models.Job{}
	if status != models.JobStatusUnknown {
		qry.Status = status
	}
	err := r.db.WithContext(ctx).
		Where(qry).
		Limit(limitOf(opts)).Offset(offsetOf(opts)).
		Order(models.JobCreatedAtField + " DESC").
		Find(&jobs).Error
	return jobs, err
}

// Update persists all fields of an existing job
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// CommitTransition persists the mutated job only if its stored status is
// still one of the expected prior statuses. Returns ErrStaleTransition when
// the guard misses, meaning a concurrent transition already advanced the job.
func (r *JobRepository) CommitTransition(ctx context.Context, job *models.Job, from ...models.JobStatus) error {
	if len(from) == 0 {
		return fmt.Errorf("commit transition requires at least one expected prior status")
	}
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status IN ?", job.ID, from).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(job)
	if res.Error != nil {
		return fmt.Errorf("failed to commit job transition: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

// ListAutoConfirmable returns jobs in worker_completed whose release date has
// passed, for the settlement sweep
func (r *JobRepository) ListAutoConfirmable(ctx context.Context, now time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND release_date IS NOT NULL AND release_date <= ?", models.JobStatusWorkerCompleted, now).
		Limit(limit).
		Order("release_date ASC").
		Find(&jobs).Error
	return jobs, err
}

// UpdatePaymentStatus advances a job's payment status only from one of the
// expected prior payment statuses. Zero rows affected means another writer
// already advanced it; callers treat that as a no-op.
func (r *JobRepository) UpdatePaymentStatus(ctx context.Context, jobID uint, to models.PaymentStatus, from ...models.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND payment_status IN ?", jobID, from).
		Update("payment_status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of jobs in the given status.
// An unknown status counts all jobs.
func (r *JobRepository) Count(ctx context.Context, status models.JobStatus) (int64, error) {
	var count int64
	qry := &models.Job{}
	if status != models.JobStatusUnknown {
		qry.Status = status
	}
	err := r.db.WithContext(ctx).Model(&models.Job{}).Where(qry).Count(&count).Error
	return count, err
}

func limitOf(opts *models.ListOptions) int {
	if opts == nil || opts.Limit <= 0 {
		return models.DefaultLimit
	}
	return opts.Limit
}

func offsetOf(opts *models.ListOptions) int {
	if opts == nil {
		return 0
	}
	return opts.Offset
}
