// Package routes registers the v1 API routes
package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gigbridge/gigbridge/internal/api/v1/handlers"
)

// Handlers bundles the handler instances the router needs
type Handlers struct {
	Job    *handlers.JobHandler
	Bid    *handlers.BidHandler
	Worker *handlers.WorkerHandler
	Admin  *handlers.AdminHandler
}

// SetupRoutes configures all the v1 routes
func SetupRoutes(router fiber.Router, h Handlers) {
	// Job lifecycle
	jobs := router.Group("/jobs")
	jobs.Post("/", h.Job.CreateJob)
	jobs.Get("/", h.Job.ListJobs)
	jobs.Get("/:id", h.Job.GetJob)
	jobs.Post("/:id/cancel", h.Job.CancelJob)
	jobs.Post("/:id/confirm", h.Job.ConfirmJob)
	jobs.Post("/:id/dispute", h.Job.DisputeJob)
	jobs.Post("/:id/complete", h.Job.CompleteJob)
	jobs.Post("/:id/worker-cancel", h.Job.WorkerCancelJob)
	jobs.Post("/:id/bids", h.Bid.SubmitBid)
	jobs.Get("/:id/bids", h.Bid.ListBids)
	jobs.Post("/:id/bids/:bidId/accept", h.Job.AcceptBid)

	// Bid negotiation
	bids := router.Group("/bids")
	bids.Post("/:id/change", h.Bid.RequestPriceChange)
	bids.Delete("/:id/change", h.Bid.CancelPriceChange)
	bids.Post("/:id/change/respond", h.Bid.RespondToPriceChange)
	bids.Post("/:id/withdraw", h.Bid.WithdrawBid)

	// Worker accounts and wallets
	workers := router.Group("/workers")
	workers.Post("/", h.Worker.RegisterWorker)
	workers.Get("/", h.Worker.ListWorkers)
	workers.Get("/:id", h.Worker.GetWorker)
	workers.Get("/:id/wallet", h.Worker.GetWallet)

	// Administration
	admin := router.Group("/admin")
	admin.Post("/jobs/:id/waitlist", h.Admin.WaitlistJob)
	admin.Post("/jobs/:id/triage", h.Admin.TriageDispute)
	admin.Post("/jobs/:id/resolve", h.Admin.ResolveDispute)
	admin.Post("/ledger/:id/block", h.Admin.BlockLedgerEntry)
	admin.Post("/ledger/:id/unblock", h.Admin.UnblockLedgerEntry)
	admin.Post("/workers/:id/approve", h.Admin.ApproveWorker)
	admin.Post("/workers/:id/reset-cancellations", h.Admin.ResetWorkerCancellations)
	admin.Post("/settlement/sweep", h.Admin.RunSweep)
}

// Register registers the v1 routes
func Register(app *fiber.App, h Handlers) {
	v1Group := app.Group("/api/v1")
	SetupRoutes(v1Group, h)
}
