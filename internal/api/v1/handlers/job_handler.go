package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/services"
)

// JobHandler handles HTTP requests for job lifecycle operations
type JobHandler struct {
	service *services.Job
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(s *services.Job) *JobHandler {
	return &JobHandler{service: s}
}

// CreateJobRequest is the payload for posting a new job
type CreateJobRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      float64   `json:"budget"`
	Location    string    `json:"location"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// CreateJob handles the request to post a new job
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	customerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	var req CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.service.Post(c.Context(), customerID, services.PostParams{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Location:    req.Location,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Response{Slug: SuccessSlug, Data: job})
}

// GetJob handles the request to fetch a job
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	job, err := h.service.Get(c.Context(), uint(jobID))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// ListJobs handles the request to list jobs, filtered by status or customer
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	opts := listOptions(c)

	if customerID := c.QueryInt("customer_id", 0); customerID > 0 {
		jobs, err := h.service.ListByCustomer(c.Context(), uint(customerID), opts)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(errServer(err.Error()))
		}
		return c.JSON(Response{Slug: SuccessSlug, Data: jobs})
	}

	status := models.JobStatusUnknown
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseJobStatus(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job status"))
		}
		status = parsed
	}

	jobs, err := h.service.ListByStatus(c.Context(), status, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(err.Error()))
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: jobs})
}

// AcceptBid handles the customer accepting a bid on their job
func (h *JobHandler) AcceptBid(c *fiber.Ctx) error {
	customerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}
	bidID, err := c.ParamsInt("bidId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid bid id"))
	}

	job, err := h.service.AcceptBid(c.Context(), uint(jobID), uint(bidID), customerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// CompleteJob handles the assigned worker marking the job done
func (h *JobHandler) CompleteJob(c *fiber.Ctx) error {
	workerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	job, err := h.service.MarkWorkerCompleted(c.Context(), uint(jobID), workerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// ConfirmJob handles the customer confirming a worker-completed job
func (h *JobHandler) ConfirmJob(c *fiber.Ctx) error {
	customerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	job, err := h.service.ConfirmCompletion(c.Context(), uint(jobID), customerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// reasonRequest carries a free-text reason for disputes and cancellations
type reasonRequest struct {
	Reason string `json:"reason"`
}

// DisputeJob handles the customer filing a dispute
func (h *JobHandler) DisputeJob(c *fiber.Ctx) error {
	customerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	var req reasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.service.FileDispute(c.Context(), uint(jobID), customerID, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// CancelJob handles a customer or admin cancelling a job
func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	id, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	var req reasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.service.Cancel(c.Context(), uint(jobID), id, actorRole(c), req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}

// WorkerCancelJob handles the assigned worker cancelling out of a job
func (h *JobHandler) WorkerCancelJob(c *fiber.Ctx) error {
	workerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	var req reasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.service.WorkerCancel(c.Context(), uint(jobID), workerID, req.Reason)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: job})
}
