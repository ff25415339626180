package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/leadpulse/leadpulse/pkg/api/errors"
	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// TemplateHandler handles contact template endpoints
type TemplateHandler struct {
	templates domain.TemplateStore
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templates domain.TemplateStore) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// List returns active templates, optionally filtered by channel
func (h *TemplateHandler) List(c echo.Context) error {
	channel := models.Channel(c.QueryParam("channel"))
	if channel != "" && !channel.Valid() {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Unknown channel",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	templates, err := h.templates.List(ctx, channel)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, templates)
}

// Get returns one template by id
func (h *TemplateHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tpl, err := h.templates.Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "template")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, tpl)
}
