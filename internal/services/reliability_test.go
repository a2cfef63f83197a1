package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigbridge/gigbridge/internal/db/models"
)

func TestEscalate(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		wantStatus  models.WorkerStatus
		wantSuspend time.Duration
		wantAdmin   bool
	}{
		{name: "first cancellation is a warning", count: 1, wantStatus: models.WorkerStatusApproved},
		{name: "second cancellation suspends a week", count: 2, wantStatus: models.WorkerStatusSuspended, wantSuspend: 7 * 24 * time.Hour},
		{name: "third cancellation suspends two weeks", count: 3, wantStatus: models.WorkerStatusSuspended, wantSuspend: 14 * 24 * time.Hour},
		{name: "fourth cancellation bans", count: 4, wantStatus: models.WorkerStatusBanned, wantAdmin: true},
		{name: "counts beyond four stay banned", count: 9, wantStatus: models.WorkerStatusBanned, wantAdmin: true},
		{name: "zero count is no action", count: 0, wantStatus: models.WorkerStatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			esc := Escalate(tt.count)
			assert.Equal(t, tt.wantStatus, esc.WorkerStatus)
			assert.Equal(t, tt.wantAdmin, esc.NotifyAdmin)
			if tt.wantSuspend > 0 {
				require.NotNil(t, esc.SuspendFor)
				assert.Equal(t, tt.wantSuspend, *esc.SuspendFor)
			} else {
				assert.Nil(t, esc.SuspendFor)
			}
		})
	}
}

func TestWorkerIsRestricted(t *testing.T) {
	now := time.Now()

	approved := &models.Worker{Status: models.WorkerStatusApproved}
	assert.False(t, approved.IsRestricted(now))

	banned := &models.Worker{Status: models.WorkerStatusBanned}
	assert.True(t, banned.IsRestricted(now))

	until := now.Add(time.Hour)
	suspended := &models.Worker{Status: models.WorkerStatusSuspended, SuspendedUntil: &until}
	assert.True(t, suspended.IsRestricted(now))

	// The suspension lapses on its own once the window passes.
	assert.False(t, suspended.IsRestricted(now.Add(2*time.Hour)))
}
