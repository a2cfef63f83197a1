package repos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gigbridge/gigbridge/internal/db/models"
)

type LedgerRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func TestLedgerRepository(t *testing.T) {
	suite.Run(t, new(LedgerRepositoryTestSuite))
}

func (s *LedgerRepositoryTestSuite) TestCreate() {
	worker := s.createTestWorker()
	entry := s.createTestEntry(1, worker.ID, time.Now().Add(48*time.Hour))
	s.NotZero(entry.ID)
	s.False(entry.Released)
	s.False(entry.Blocked)
}

func (s *LedgerRepositoryTestSuite) TestCreateRejectsInvalid() {
	err := s.ledgerRepo.Create(s.ctx, &models.LedgerEntry{
		WorkerID: 1,
		JobID:    1,
		Type:     models.LedgerEntryCredit,
		Amount:   0,
	})
	s.Error(err)
}

func (s *LedgerRepositoryTestSuite) TestListMature() {
	worker := s.createTestWorker()
	now := time.Now()

	ripe := s.createTestEntry(1, worker.ID, now.Add(-time.Hour))
	s.createTestEntry(2, worker.ID, now.Add(time.Hour))

	blocked := s.createTestEntry(3, worker.ID, now.Add(-time.Hour))
	s.NoError(s.ledgerRepo.SetBlocked(s.ctx, blocked.ID, true))

	entries, err := s.ledgerRepo.ListMature(s.ctx, now, 100)
	s.NoError(err)
	s.Len(entries, 1)
	s.Equal(ripe.ID, entries[0].ID)
}

func (s *LedgerRepositoryTestSuite) TestReleaseCreditsWallet() {
	worker := s.createTestWorker()
	entry := s.createTestEntry(1, worker.ID, time.Now().Add(-time.Hour))

	released, err := s.ledgerRepo.Release(s.ctx, entry.ID)
	s.NoError(err)
	s.True(released)

	updated, err := s.workerRepo.GetByID(s.ctx, worker.ID)
	s.NoError(err)
	s.InDelta(entry.Amount, updated.WalletBalance, 0.001)
}

func (s *LedgerRepositoryTestSuite) TestReleaseIsIdempotent() {
	worker := s.createTestWorker()
	entry := s.createTestEntry(1, worker.ID, time.Now().Add(-time.Hour))

	released, err := s.ledgerRepo.Release(s.ctx, entry.ID)
	s.NoError(err)
	s.True(released)

	// A second release is a no-op and must not credit the wallet again.
	released, err = s.ledgerRepo.Release(s.ctx, entry.ID)
	s.NoError(err)
	s.False(released)

	updated, err := s.workerRepo.GetByID(s.ctx, worker.ID)
	s.NoError(err)
	s.InDelta(entry.Amount, updated.WalletBalance, 0.001)
}

func (s *LedgerRepositoryTestSuite) TestReleaseSkipsBlockedEntry() {
	worker := s.createTestWorker()
	entry := s.createTestEntry(1, worker.ID, time.Now().Add(-time.Hour))
	s.NoError(s.ledgerRepo.SetBlocked(s.ctx, entry.ID, true))

	released, err := s.ledgerRepo.Release(s.ctx, entry.ID)
	s.NoError(err)
	s.False(released)

	updated, err := s.workerRepo.GetByID(s.ctx, worker.ID)
	s.NoError(err)
	s.Zero(updated.WalletBalance)
}

func (s *LedgerRepositoryTestSuite) TestSetBlockedRejectsReleasedEntry() {
	worker := s.createTestWorker()
	entry := s.createTestEntry(1, worker.ID, time.Now().Add(-time.Hour))

	released, err := s.ledgerRepo.Release(s.ctx, entry.ID)
	s.NoError(err)
	s.True(released)

	s.Error(s.ledgerRepo.SetBlocked(s.ctx, entry.ID, true))
}

func (s *LedgerRepositoryTestSuite) TestUpdateAvailabilityByJob() {
	worker := s.createTestWorker()
	jobID := uint(7)
	entry := s.createTestEntry(jobID, worker.ID, time.Now().Add(96*time.Hour))

	newAvailable := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	s.NoError(s.ledgerRepo.UpdateAvailabilityByJob(s.ctx, jobID, newAvailable))

	updated, err := s.ledgerRepo.GetByID(s.ctx, entry.ID)
	s.NoError(err)
	s.Require().NotNil(updated.AvailableAt)
	s.WithinDuration(newAvailable, *updated.AvailableAt, time.Second)
}

func (s *LedgerRepositoryTestSuite) TestListMatureSkipsUnarmedEntry() {
	worker := s.createTestWorker()
	unarmed := &models.LedgerEntry{
		WorkerID: worker.ID,
		JobID:    4,
		Type:     models.LedgerEntryCredit,
		Amount:   85.51,
	}
	s.Require().NoError(s.ledgerRepo.Create(s.ctx, unarmed))

	entries, err := s.ledgerRepo.ListMature(s.ctx, time.Now().Add(1000*time.Hour), 100)
	s.NoError(err)
	s.Empty(entries)

	// Arming the entry makes it eligible once the date passes.
	s.NoError(s.ledgerRepo.UpdateAvailabilityByJob(s.ctx, 4, time.Now().Add(-time.Hour)))
	entries, err = s.ledgerRepo.ListMature(s.ctx, time.Now(), 100)
	s.NoError(err)
	s.Len(entries, 1)
	s.Equal(unarmed.ID, entries[0].ID)
}

func (s *LedgerRepositoryTestSuite) TestSetBlockedByJob() {
	worker := s.createTestWorker()
	jobID := uint(9)
	first := s.createTestEntry(jobID, worker.ID, time.Now())
	second := s.createTestEntry(jobID, worker.ID, time.Now())
	other := s.createTestEntry(10, worker.ID, time.Now())

	s.NoError(s.ledgerRepo.SetBlockedByJob(s.ctx, jobID, true))

	for _, id := range []uint{first.ID, second.ID} {
		entry, err := s.ledgerRepo.GetByID(s.ctx, id)
		s.NoError(err)
		s.True(entry.Blocked)
	}
	untouched, err := s.ledgerRepo.GetByID(s.ctx, other.ID)
	s.NoError(err)
	s.False(untouched.Blocked)
}

func (s *LedgerRepositoryTestSuite) TestListByWorker() {
	worker := s.createTestWorker()
	s.createTestEntry(1, worker.ID, time.Now())
	s.createTestEntry(2, worker.ID, time.Now())
	s.createTestEntry(3, s.createTestWorker().ID, time.Now())

	entries, err := s.ledgerRepo.ListByWorker(s.ctx, worker.ID, nil)
	s.NoError(err)
	s.Len(entries, 2)
}
