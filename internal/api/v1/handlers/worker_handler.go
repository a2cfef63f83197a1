package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/services"
)

// WorkerHandler handles HTTP requests for worker accounts and wallets
type WorkerHandler struct {
	service *services.Account
}

// NewWorkerHandler creates a new worker handler instance
func NewWorkerHandler(s *services.Account) *WorkerHandler {
	return &WorkerHandler{service: s}
}

// RegisterWorkerRequest is the payload for registering a worker
type RegisterWorkerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterWorker handles creating a new worker account
func (h *WorkerHandler) RegisterWorker(c *fiber.Ctx) error {
	var req RegisterWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("email is required"))
	}

	worker, err := h.service.Register(c.Context(), req.Name, req.Email)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(Response{Slug: SuccessSlug, Data: worker})
}

// ListWorkers handles listing worker accounts, optionally filtered by status
func (h *WorkerHandler) ListWorkers(c *fiber.Ctx) error {
	var status models.WorkerStatus
	if str := c.Query("status"); str != "" {
		parsed, err := models.ParseWorkerStatus(str)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
		}
		status = parsed
	}

	workers, err := h.service.ListByStatus(c.Context(), status, listOptions(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(err.Error()))
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: workers})
}

// GetWorker handles fetching a worker account
func (h *WorkerHandler) GetWorker(c *fiber.Ctx) error {
	workerID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid worker id"))
	}

	worker, err := h.service.Get(c.Context(), uint(workerID))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: worker})
}

// GetWallet handles fetching a worker's balance and ledger
func (h *WorkerHandler) GetWallet(c *fiber.Ctx) error {
	workerID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid worker id"))
	}

	wallet, err := h.service.Wallet(c.Context(), uint(workerID), listOptions(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: wallet})
}
