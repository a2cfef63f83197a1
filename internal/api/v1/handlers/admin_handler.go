package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gigbridge/gigbridge/internal/services"
)

// AdminHandler handles administrative operations: dispute triage and
// resolution, ledger blocks, reliability resets and manual sweeps.
type AdminHandler struct {
	jobs       *services.Job
	accounts   *services.Account
	settlement *services.Settlement
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(jobs *services.Job, accounts *services.Account, settlement *services.Settlement) *AdminHandler {
	return &AdminHandler{jobs: jobs, accounts: accounts, settlement: settlement}
}

// TriageDispute handles moving a dispute into admin triage
func (h *AdminHandler) TriageDispute(c *fiber.Ctx) error {
	adminID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	job, err := h.jobs.TriageDispute(c.Context(), uint(jobID), adminID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// ResolveDisputeRequest is the payload for closing a dispute
type ResolveDisputeRequest struct {
	ReleaseToWorker bool   `json:"release_to_worker"`
	Note            string `json:"note"`
}

// ResolveDispute handles closing a triaged dispute
func (h *AdminHandler) ResolveDispute(c *fiber.Ctx) error {
	adminID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	var req ResolveDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.jobs.ResolveDispute(c.Context(), uint(jobID), adminID, req.ReleaseToWorker, req.Note)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// WaitlistJob handles the matching collaborator reporting no eligible workers
func (h *AdminHandler) WaitlistJob(c *fiber.Ctx) error {
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.jobs.Waitlist(c.Context(), uint(jobID), req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// BlockLedgerEntry handles placing an administrative block on a ledger entry
func (h *AdminHandler) BlockLedgerEntry(c *fiber.Ctx) error {
	entryID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid ledger entry id"))
	}

	if err := h.accounts.BlockLedgerEntry(c.Context(), uint(entryID)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: "ledger entry blocked"})
}

// UnblockLedgerEntry handles clearing an administrative block on a ledger entry
func (h *AdminHandler) UnblockLedgerEntry(c *fiber.Ctx) error {
	entryID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid ledger entry id"))
	}

	if err := h.accounts.UnblockLedgerEntry(c.Context(), uint(entryID)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: "ledger entry unblocked"})
}

// ApproveWorker handles approving a pending worker account
func (h *AdminHandler) ApproveWorker(c *fiber.Ctx) error {
	workerID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid worker id"))
	}

	worker, err := h.accounts.Approve(c.Context(), uint(workerID))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: worker})
}

// ResetWorkerCancellations handles clearing a worker's reliability state
func (h *AdminHandler) ResetWorkerCancellations(c *fiber.Ctx) error {
	workerID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid worker id"))
	}

	worker, err := h.accounts.ResetCancellations(c.Context(), uint(workerID))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: worker})
}

// RunSweep handles a manual settlement sweep
func (h *AdminHandler) RunSweep(c *fiber.Ctx) error {
	stats := h.settlement.Sweep(c.Context(), time.Now())
	return c.JSON(Response{Slug: SuccessSlug, Data: stats})
}
