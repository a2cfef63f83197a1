package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/db/repos"
	"github.com/gigbridge/gigbridge/internal/notify"
	"github.com/gigbridge/gigbridge/internal/payments"
)

// recordedNotification is one captured dispatcher call
type recordedNotification struct {
	Recipient string
	Kind      notify.Kind
	Payload   map[string]interface{}
}

// recordingNotifier captures notifications for assertions instead of
// delivering them
type recordingNotifier struct {
	sent []recordedNotification
}

func (n *recordingNotifier) Notify(_ context.Context, recipient string, kind notify.Kind, payload map[string]interface{}) {
	n.sent = append(n.sent, recordedNotification{Recipient: recipient, Kind: kind, Payload: payload})
}

// kinds returns the kinds of all captured notifications, in order
func (n *recordingNotifier) kinds() []notify.Kind {
	out := make([]notify.Kind, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.Kind
	}
	return out
}

// hasKind reports whether any captured notification has the given kind
func (n *recordingNotifier) hasKind(kind notify.Kind) bool {
	for _, s := range n.sent {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// TestSetup wires the full service stack over an in-memory database
type TestSetup struct {
	Ctx        context.Context
	DB         *gorm.DB
	Jobs       *repos.JobRepository
	Bids       *repos.BidRepository
	Workers    *repos.WorkerRepository
	Ledger     *repos.LedgerRepository
	Gateway    *payments.FakeGateway
	Notifier   *recordingNotifier
	JobSvc     *Job
	BidSvc     *Bid
	AccountSvc *Account
	Settlement *Settlement

	seq uint
}

// NewTestSetup creates a fully wired test environment
func NewTestSetup(t *testing.T) *TestSetup {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_json=1"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create in-memory database")
	require.NoError(t, db.AutoMigrate(&models.Job{}, &models.Bid{}, &models.Worker{}, &models.LedgerEntry{}),
		"Failed to run database migrations")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s := &TestSetup{
		Ctx:      context.Background(),
		DB:       db,
		Jobs:     repos.NewJobRepository(db),
		Bids:     repos.NewBidRepository(db),
		Workers:  repos.NewWorkerRepository(db),
		Ledger:   repos.NewLedgerRepository(db),
		Gateway:  payments.NewFakeGateway(),
		Notifier: &recordingNotifier{},
	}
	s.JobSvc = NewJobService(s.Jobs, s.Bids, s.Workers, s.Ledger, s.Gateway, s.Notifier)
	s.BidSvc = NewBidService(s.Bids, s.Jobs, s.Workers, s.Notifier)
	s.AccountSvc = NewAccountService(s.Workers, s.Ledger)
	s.Settlement = NewSettlementService(s.Jobs, s.Ledger, s.Workers, s.JobSvc, s.Gateway, s.Notifier)
	return s
}

// createWorker creates an approved worker
func (s *TestSetup) createWorker(t *testing.T) *models.Worker {
	t.Helper()
	s.seq++
	worker := &models.Worker{
		Name:   fmt.Sprintf("worker-%d", s.seq),
		Email:  fmt.Sprintf("worker-%d@example.com", s.seq),
		Status: models.WorkerStatusApproved,
	}
	require.NoError(t, s.Workers.Create(s.Ctx, worker))
	return worker
}

// createJob posts a job for the given customer at the given scheduled time
func (s *TestSetup) createJob(t *testing.T, customerID uint, budget float64, scheduledAt time.Time) *models.Job {
	t.Helper()
	job, err := s.JobSvc.Post(s.Ctx, customerID, PostParams{
		Title:       "assemble a wardrobe",
		Description: "flat-pack, tools provided",
		Budget:      budget,
		Location:    "Utrecht",
		ScheduledAt: scheduledAt,
	})
	require.NoError(t, err)
	return job
}

// assignJob runs the post-bid-accept path and returns the job, winning bid and
// assigned worker
func (s *TestSetup) assignJob(t *testing.T, customerID uint, price float64, scheduledAt time.Time) (*models.Job, *models.Bid, *models.Worker) {
	t.Helper()
	job := s.createJob(t, customerID, price, scheduledAt)
	worker := s.createWorker(t)

	bid, err := s.BidSvc.Submit(s.Ctx, job.ID, worker.ID, price, "on it")
	require.NoError(t, err)

	assigned, err := s.JobSvc.AcceptBid(s.Ctx, job.ID, bid.ID, customerID)
	require.NoError(t, err)
	return assigned, bid, worker
}
