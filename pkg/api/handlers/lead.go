package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/leadpulse/leadpulse/pkg/api/errors"
	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// LeadHandler handles lead CRUD endpoints
type LeadHandler struct {
	leads     domain.LeadStore
	validator *validator.Validate
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads domain.LeadStore) *LeadHandler {
	return &LeadHandler{
		leads:     leads,
		validator: validator.New(),
	}
}

// List returns leads matching the query filters, with priority bucket
// counts for the dashboard stat cards
func (h *LeadHandler) List(c echo.Context) error {
	var filter models.LeadFilter
	if err := c.Bind(&filter); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid query parameters",
		})
	}

	if err := h.validator.Struct(filter); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leads, err := h.leads.List(ctx, filter)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	resp := models.LeadListResponse{
		Data:  leads,
		Total: len(leads),
	}
	for _, l := range leads {
		switch l.PriorityBucket() {
		case "high":
			resp.Buckets.High++
		case "medium":
			resp.Buckets.Medium++
		default:
			resp.Buckets.Low++
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// Get returns one lead by id
func (h *LeadHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lead, err := h.leads.Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, lead)
}

// Add creates a new lead
func (h *LeadHandler) Add(c echo.Context) error {
	var lead models.Lead
	if err := c.Bind(&lead); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if lead.FirstName == "" && lead.FacebookName == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "A lead needs at least a first name or a Facebook name",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.leads.Add(ctx, &lead)
	if err != nil {
		if domain.IsConflict(err) {
			return errors.ConflictError(c, "Lead already exists")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// Update applies a partial update to a lead
func (h *LeadHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return errors.ValidationError(c, err)
	}

	var patch models.LeadPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.leads.Update(ctx, id, patch)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a lead
func (h *LeadHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.leads.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
