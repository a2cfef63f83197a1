package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/services"
)

// BidHandler handles HTTP requests for bid operations
type BidHandler struct {
	service *services.Bid
}

// NewBidHandler creates a new bid handler instance
func NewBidHandler(s *services.Bid) *BidHandler {
	return &BidHandler{service: s}
}

// SubmitBidRequest is the payload for submitting a bid
type SubmitBidRequest struct {
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

// SubmitBid handles a worker bidding on a job
func (h *BidHandler) SubmitBid(c *fiber.Ctx) error {
	workerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	var req SubmitBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	if req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("price must be positive"))
	}

	bid, err := h.service.Submit(c.Context(), uint(jobID), workerID, req.Price, req.Message)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(Response{Slug: SuccessSlug, Data: bid})
}

// ListBids handles listing all bids on a job. With ?active=true only
// actionable bids are returned.
func (h *BidHandler) ListBids(c *fiber.Ctx) error {
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid job id"))
	}

	bids, err := h.service.ListByJob(c.Context(), uint(jobID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(err.Error()))
	}
	if c.QueryBool("active") {
		active := make([]models.Bid, 0, len(bids))
		for _, b := range bids {
			if b.IsActive() {
				active = append(active, b)
			}
		}
		bids = active
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: bids})
}

// ChangeRequestBody is the payload for opening a price change request
type ChangeRequestBody struct {
	NewPrice float64 `json:"new_price"`
	Message  string  `json:"message"`
}

// RequestPriceChange handles a worker proposing a new price on their bid
func (h *BidHandler) RequestPriceChange(c *fiber.Ctx) error {
	workerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	bidID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid bid id"))
	}

	var req ChangeRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	if req.NewPrice <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("new_price must be positive"))
	}

	bid, err := h.service.RequestPriceChange(c.Context(), uint(bidID), workerID, req.NewPrice, req.Message)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: bid})
}

// CancelPriceChange handles a worker cancelling their pending change request
func (h *BidHandler) CancelPriceChange(c *fiber.Ctx) error {
	workerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	bidID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid bid id"))
	}

	bid, err := h.service.CancelPendingChangeRequest(c.Context(), uint(bidID), workerID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: bid})
}

// ChangeResponseBody is the payload for answering a change request
type ChangeResponseBody struct {
	Accept bool `json:"accept"`
}

// RespondToPriceChange handles the customer answering a pending change request
func (h *BidHandler) RespondToPriceChange(c *fiber.Ctx) error {
	customerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	bidID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid bid id"))
	}

	var req ChangeResponseBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	bid, err := h.service.RespondToChangeRequest(c.Context(), uint(bidID), customerID, req.Accept)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: bid})
}

// WithdrawBid handles a worker retracting their pending bid
func (h *BidHandler) WithdrawBid(c *fiber.Ctx) error {
	workerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}
	bidID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput("invalid bid id"))
	}

	if err := h.service.Withdraw(c.Context(), uint(bidID), workerID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(Response{Slug: SuccessSlug, Data: "bid withdrawn"})
}
