package repos

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/gigbridge/gigbridge/internal/db"
	"github.com/gigbridge/gigbridge/internal/db/models"
)

type BidRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func TestBidRepository(t *testing.T) {
	suite.Run(t, new(BidRepositoryTestSuite))
}

func (s *BidRepositoryTestSuite) TestCreate() {
	job := s.createTestJob()
	worker := s.createTestWorker()

	bid := s.createTestBid(job.ID, worker.ID)
	s.NotZero(bid.ID)
	s.Equal(models.BidStatusPending, bid.Status)
	s.Equal(models.ChangeStatusNone, bid.ChangeStatus)
}

func (s *BidRepositoryTestSuite) TestGetByID() {
	job := s.createTestJob()
	worker := s.createTestWorker()
	original := s.createTestBid(job.ID, worker.ID)

	found, err := s.bidRepo.GetByID(s.ctx, original.ID)
	s.NoError(err)
	s.Equal(original.ID, found.ID)
	s.Len(found.History, 1)

	_, err = s.bidRepo.GetByID(s.ctx, 999)
	s.Error(err)
}

func (s *BidRepositoryTestSuite) TestCreateRejectsSecondActiveBidForPair() {
	job := s.createTestJob()
	worker := s.createTestWorker()
	s.createTestBid(job.ID, worker.ID)

	// The partial unique index backstops the service's read-then-create.
	err := s.bidRepo.Create(s.ctx, &models.Bid{
		JobID:             job.ID,
		WorkerID:          worker.ID,
		Price:             80.00,
		EstimatedEarnings: 75.51,
	})
	s.Error(err)
	s.True(db.IsDuplicateKeyError(err))
}

func (s *BidRepositoryTestSuite) TestCreateAllowsNewBidAfterRejection() {
	job := s.createTestJob()
	worker := s.createTestWorker()
	prior := s.createTestBid(job.ID, worker.ID)

	prior.Status = models.BidStatusRejected
	s.NoError(s.bidRepo.Update(s.ctx, prior))

	replacement := s.createTestBid(job.ID, worker.ID)
	s.NotZero(replacement.ID)
	s.NotEqual(prior.ID, replacement.ID)
}

func (s *BidRepositoryTestSuite) TestGetActiveByJobAndWorker() {
	job := s.createTestJob()
	worker := s.createTestWorker()

	// No bid yet
	found, err := s.bidRepo.GetActiveByJobAndWorker(s.ctx, job.ID, worker.ID)
	s.NoError(err)
	s.Nil(found)

	bid := s.createTestBid(job.ID, worker.ID)
	found, err = s.bidRepo.GetActiveByJobAndWorker(s.ctx, job.ID, worker.ID)
	s.NoError(err)
	s.NotNil(found)
	s.Equal(bid.ID, found.ID)

	// Rejected bids do not count as active
	bid.Status = models.BidStatusRejected
	s.NoError(s.bidRepo.Update(s.ctx, bid))
	found, err = s.bidRepo.GetActiveByJobAndWorker(s.ctx, job.ID, worker.ID)
	s.NoError(err)
	s.Nil(found)
}

func (s *BidRepositoryTestSuite) TestListByJob() {
	job := s.createTestJob()
	s.createTestBid(job.ID, s.createTestWorker().ID)
	s.createTestBid(job.ID, s.createTestWorker().ID)
	s.createTestBid(s.createTestJob().ID, s.createTestWorker().ID)

	bids, err := s.bidRepo.ListByJob(s.ctx, job.ID)
	s.NoError(err)
	s.Len(bids, 2)
}

func (s *BidRepositoryTestSuite) TestListByWorker() {
	worker := s.createTestWorker()
	s.createTestBid(s.createTestJob().ID, worker.ID)
	s.createTestBid(s.createTestJob().ID, worker.ID)

	bids, err := s.bidRepo.ListByWorker(s.ctx, worker.ID, nil)
	s.NoError(err)
	s.Len(bids, 2)
}

func (s *BidRepositoryTestSuite) TestGetWinningBid() {
	job := s.createTestJob()
	worker := s.createTestWorker()

	found, err := s.bidRepo.GetWinningBid(s.ctx, job.ID)
	s.NoError(err)
	s.Nil(found)

	bid := s.createTestBid(job.ID, worker.ID)
	bid.Status = models.BidStatusAccepted
	bid.IsWinningBid = true
	s.NoError(s.bidRepo.Update(s.ctx, bid))

	found, err = s.bidRepo.GetWinningBid(s.ctx, job.ID)
	s.NoError(err)
	s.NotNil(found)
	s.Equal(bid.ID, found.ID)
}

func (s *BidRepositoryTestSuite) TestRejectAllForJob() {
	job := s.createTestJob()
	winner := s.createTestBid(job.ID, s.createTestWorker().ID)
	winner.Status = models.BidStatusAccepted
	winner.IsWinningBid = true
	s.NoError(s.bidRepo.Update(s.ctx, winner))
	s.createTestBid(job.ID, s.createTestWorker().ID)

	s.NoError(s.bidRepo.RejectAllForJob(s.ctx, job.ID))

	bids, err := s.bidRepo.ListByJob(s.ctx, job.ID)
	s.NoError(err)
	s.Len(bids, 2)
	for _, b := range bids {
		s.Equal(models.BidStatusRejected, b.Status)
		s.False(b.IsWinningBid)
	}
}

func (s *BidRepositoryTestSuite) TestRejectOthersForJob() {
	job := s.createTestJob()
	keep := s.createTestBid(job.ID, s.createTestWorker().ID)
	other := s.createTestBid(job.ID, s.createTestWorker().ID)

	s.NoError(s.bidRepo.RejectOthersForJob(s.ctx, job.ID, keep.ID))

	kept, err := s.bidRepo.GetByID(s.ctx, keep.ID)
	s.NoError(err)
	s.Equal(models.BidStatusPending, kept.Status)

	rejected, err := s.bidRepo.GetByID(s.ctx, other.ID)
	s.NoError(err)
	s.Equal(models.BidStatusRejected, rejected.Status)
}
