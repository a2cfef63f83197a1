package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// LedgerEntryType represents the direction of a wallet ledger movement
type LedgerEntryType string

// Ledger entry type constants
const (
	// LedgerEntryCredit adds funds to the worker's wallet once released
	LedgerEntryCredit LedgerEntryType = "credit"
	// LedgerEntryDebit removes funds from the worker's wallet once released
	LedgerEntryDebit LedgerEntryType = "debit"
)

// LedgerEntry is one escrow/payout movement on a worker's wallet.
// Entries are never deleted; they form the financial audit trail.
// An entry with no availability date is an unarmed hold: it never matures
// until worker completion sets the date. The composite index backs the
// settlement sweep.
type LedgerEntry struct {
	gorm.Model
	WorkerID uint            `json:"worker_id" gorm:"not null;index"`
	JobID    uint            `json:"job_id" gorm:"not null;index"`
	Type     LedgerEntryType `json:"type" gorm:"not null"`
	Amount   float64         `json:"amount" gorm:"not null"`

	AvailableAt *time.Time `json:"available_at,omitempty" gorm:"index:idx_ledger_sweep,priority:3"`
	Released    bool       `json:"released" gorm:"not null;default:false;index:idx_ledger_sweep,priority:1"`
	Blocked     bool       `json:"blocked" gorm:"not null;default:false;index:idx_ledger_sweep,priority:2"`

	Note      string    `json:"note,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// Validate ensures that the ledger entry data is valid
func (e *LedgerEntry) Validate() error {
	if e.WorkerID == 0 {
		return fmt.Errorf("ledger entry worker_id cannot be 0")
	}
	if e.Amount <= 0 {
		return fmt.Errorf("ledger entry amount must be positive")
	}
	if e.Type != LedgerEntryCredit && e.Type != LedgerEntryDebit {
		return fmt.Errorf("invalid ledger entry type: %s", e.Type)
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new ledger entry
func (e *LedgerEntry) BeforeCreate(_ *gorm.DB) error {
	return e.Validate()
}

// Mature reports whether the entry is eligible for release at the given
// time. Unarmed entries never mature.
func (e *LedgerEntry) Mature(now time.Time) bool {
	return !e.Released && !e.Blocked && e.AvailableAt != nil && !e.AvailableAt.After(now)
}
