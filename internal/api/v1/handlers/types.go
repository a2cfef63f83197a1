// Package handlers implements the HTTP handlers of the v1 API
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gigbridge/gigbridge/internal/db/models"
	"github.com/gigbridge/gigbridge/internal/services"
)

// Slug classifies an API response
type Slug string

// Response slugs
const (
	SuccessSlug      Slug = "success"
	ErrorSlug        Slug = "error"
	InvalidInputSlug Slug = "invalid-input"
	NotFoundSlug     Slug = "not-found"
	ConflictSlug     Slug = "conflict"
	UnauthorizedSlug Slug = "unauthorized"
	InvalidStateSlug Slug = "invalid-state"
	UpstreamSlug     Slug = "upstream-failure"
	ServerErrorSlug  Slug = "server-error"
)

// Response is the envelope of every API response
type Response struct {
	Slug   Slug        `json:"slug"`
	Error  string      `json:"error,omitempty"`
	Status string      `json:"status,omitempty"` // current entity status on rejected transitions
	Data   interface{} `json:"data,omitempty"`
}

func errInvalidInput(msg string) Response {
	return Response{Slug: InvalidInputSlug, Error: msg}
}

func errServer(msg string) Response {
	return Response{Slug: ServerErrorSlug, Error: msg}
}

// respondErr maps a service error kind to an HTTP status and slug. Rejected
// transitions include the entity's current authoritative status so the
// caller can reconcile without re-deriving it.
func respondErr(c *fiber.Ctx, err error) error {
	var stateErr *services.StateError
	currentStatus := ""
	if errors.As(err, &stateErr) {
		currentStatus = stateErr.CurrentStatus.String()
	}

	code := fiber.StatusInternalServerError
	slug := ServerErrorSlug
	switch {
	case errors.Is(err, services.ErrNotFound):
		code, slug = fiber.StatusNotFound, NotFoundSlug
	case errors.Is(err, services.ErrConflict):
		code, slug = fiber.StatusConflict, ConflictSlug
	case errors.Is(err, services.ErrUnauthorized):
		code, slug = fiber.StatusForbidden, UnauthorizedSlug
	case errors.Is(err, services.ErrInvalidState):
		code, slug = fiber.StatusUnprocessableEntity, InvalidStateSlug
	case errors.Is(err, services.ErrUpstreamFailure):
		code, slug = fiber.StatusBadGateway, UpstreamSlug
	}

	return c.Status(code).JSON(Response{
		Slug:   slug,
		Error:  err.Error(),
		Status: currentStatus,
	})
}

// actorID extracts the acting user's ID from the X-Actor-ID header.
// Authentication proper is an upstream collaborator; this core only needs
// the identity for entitlement checks.
func actorID(c *fiber.Ctx) (uint, error) {
	raw := c.Get("X-Actor-ID")
	if raw == "" {
		return 0, errors.New("X-Actor-ID header is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid X-Actor-ID header")
	}
	return uint(id), nil
}

// actorRole extracts the acting user's role from the X-Actor-Role header
func actorRole(c *fiber.Ctx) models.ActorRole {
	switch models.ActorRole(c.Get("X-Actor-Role")) {
	case models.ActorAdmin:
		return models.ActorAdmin
	case models.ActorWorker:
		return models.ActorWorker
	default:
		return models.ActorCustomer
	}
}

func listOptions(c *fiber.Ctx) *models.ListOptions {
	return &models.ListOptions{
		Limit:  c.QueryInt("limit", models.DefaultLimit),
		Offset: c.QueryInt("offset", 0),
	}
}
