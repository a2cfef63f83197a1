// Package models defines the persisted aggregates of the marketplace:
// jobs, bids, workers and the wallet ledger.
package models

const (
	// DefaultLimit is the max number of rows that are retrieved from the DB per listing API call
	DefaultLimit = 50
)

// ListOptions represents pagination options for list operations
type ListOptions struct {
	Limit          int  `json:"limit"`  // Number of items to return
	Offset         int  `json:"offset"` // Number of items to skip
	IncludeDeleted bool `json:"include_deleted"`
}

// ActorRole identifies who performed a lifecycle action
type ActorRole string

// Actor role constants
const (
	// ActorCustomer is the customer who posted the job
	ActorCustomer ActorRole = "customer"
	// ActorWorker is a worker bidding on or performing the job
	ActorWorker ActorRole = "worker"
	// ActorAdmin is an administrator
	ActorAdmin ActorRole = "admin"
	// ActorSystem is the system itself (scheduler, matching)
	ActorSystem ActorRole = "system"
)
