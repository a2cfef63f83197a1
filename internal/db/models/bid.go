package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BidStatus represents the current state of a bid
type BidStatus string

// Bid status constants
const (
	// BidStatusPending indicates the bid awaits a customer decision
	BidStatusPending BidStatus = "pending"
	// BidStatusAccepted indicates the bid won the job
	BidStatusAccepted BidStatus = "accepted"
	// BidStatusRejected indicates the bid was rejected or invalidated
	BidStatusRejected BidStatus = "rejected"
)

// ChangeStatus represents the state of a bid's price change request
type ChangeStatus string

// Change request status constants
const (
	// ChangeStatusNone indicates no change request exists
	ChangeStatusNone ChangeStatus = "none"
	// ChangeStatusPending indicates a change request awaits the customer
	ChangeStatusPending ChangeStatus = "pending"
	// ChangeStatusAccepted indicates the customer accepted the new price
	ChangeStatusAccepted ChangeStatus = "accepted"
	// ChangeStatusRejected indicates the customer rejected the new price
	ChangeStatusRejected ChangeStatus = "rejected"
)

// BidRevision is one historical price point of a bid
type BidRevision struct {
	Price    float64   `json:"price"`
	Earnings float64   `json:"earnings"`
	At       time.Time `json:"at"`
}

// BidHistory is the append-only price revision history of a bid, stored as JSONB
type BidHistory []BidRevision

// Value implements driver.Valuer for BidHistory
func (h BidHistory) Value() (driver.Value, error) {
	if h == nil {
		h = BidHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for BidHistory
func (h *BidHistory) Scan(value interface{}) error {
	if value == nil {
		*h = BidHistory{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return fmt.Errorf("cannot scan %T into BidHistory", value)
	}
}

// Bid represents a worker's offer on a job. The partial unique index lets a
// worker hold at most one non-rejected bid per job, while rejected bids stay
// replaceable after a reopen.
type Bid struct {
	gorm.Model
	JobID             uint      `json:"job_id" gorm:"not null;index;index:idx_bids_one_active,unique,priority:1,where:status <> 'rejected'"`
	WorkerID          uint      `json:"worker_id" gorm:"not null;index;index:idx_bids_one_active,unique,priority:2,where:status <> 'rejected'"`
	Price             float64   `json:"price" gorm:"not null"`
	EstimatedEarnings float64   `json:"estimated_earnings" gorm:"not null"`
	Message           string    `json:"message,omitempty" gorm:"type:text"`
	Status            BidStatus `json:"status" gorm:"not null;index"`
	IsWinningBid      bool      `json:"is_winning_bid" gorm:"not null;default:false;index"`
	CancelledByWorker bool      `json:"cancelled_by_worker" gorm:"not null;default:false"`

	ChangeStatus      ChangeStatus `json:"change_status" gorm:"not null;default:none"`
	NewPrice          *float64     `json:"new_price,omitempty"`
	NewEarnings       *float64     `json:"new_earnings,omitempty"`
	ChangeMessage     string       `json:"change_message,omitempty"`
	ChangeRequestedAt *time.Time   `json:"change_requested_at,omitempty"`
	ChangeRespondedAt *time.Time   `json:"change_responded_at,omitempty"`

	History   BidHistory `json:"history" gorm:"type:jsonb"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

// Validate ensures that the bid data is valid
func (b *Bid) Validate() error {
	if b.JobID == 0 {
		return fmt.Errorf("bid job_id cannot be 0")
	}
	if b.WorkerID == 0 {
		return fmt.Errorf("bid worker_id cannot be 0")
	}
	if b.Price <= 0 {
		return fmt.Errorf("bid price must be positive")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new bid
func (b *Bid) BeforeCreate(_ *gorm.DB) error {
	if b.Status == "" {
		b.Status = BidStatusPending
	}
	if b.ChangeStatus == "" {
		b.ChangeStatus = ChangeStatusNone
	}
	return b.Validate()
}

// HasPendingChange reports whether a change request is awaiting the customer
func (b *Bid) HasPendingChange() bool {
	return b.ChangeStatus == ChangeStatusPending
}

// IsActive reports whether the bid is still actionable
func (b *Bid) IsActive() bool {
	return b.Status == BidStatusPending || b.Status == BidStatusAccepted
}
