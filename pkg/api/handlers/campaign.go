package handlers

import (
	"context"
	goerrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/leadpulse/leadpulse/config"
	"github.com/leadpulse/leadpulse/pkg/api/errors"
	"github.com/leadpulse/leadpulse/pkg/campaign"
	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/metrics"
	"github.com/leadpulse/leadpulse/pkg/models"
	"github.com/leadpulse/leadpulse/pkg/personalize"
)

// CampaignHandler handles bulk contact run endpoints and the contact ledger views
type CampaignHandler struct {
	campaigns    *campaign.Service
	personalizer *personalize.Service
	leads        domain.LeadStore
	templates    domain.TemplateStore
	ledger       domain.LedgerStore
	config       *config.Config
	metrics      *metrics.Metrics
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(
	campaigns *campaign.Service,
	personalizer *personalize.Service,
	leads domain.LeadStore,
	templates domain.TemplateStore,
	ledger domain.LedgerStore,
	cfg *config.Config,
	m *metrics.Metrics,
) *CampaignHandler {
	return &CampaignHandler{
		campaigns:    campaigns,
		personalizer: personalizer,
		leads:        leads,
		templates:    templates,
		ledger:       ledger,
		config:       cfg,
		metrics:      m,
		validator:    validator.New(),
	}
}

// Run starts a bulk contact run and blocks until it finishes. The run is
// tied to the request context, so a client disconnect cancels it between
// sends. A concurrent run is rejected with 409.
func (h *CampaignHandler) Run(c echo.Context) error {
	var req models.RunCampaignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordCampaignRun()
	}

	report, err := h.campaigns.Run(c.Request().Context(), campaign.RunRequest{
		LeadIDs:    req.LeadIDs,
		Channel:    models.Channel(req.Channel),
		TemplateID: req.TemplateID,
	})
	if err != nil {
		switch {
		case goerrors.Is(err, campaign.ErrCampaignAlreadyRunning):
			return c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "campaign_already_running",
				Message: "A campaign run is already in progress",
			})
		case goerrors.Is(err, campaign.ErrEmptySelection),
			goerrors.Is(err, campaign.ErrNoTemplateSelected),
			goerrors.Is(err, campaign.ErrChannelMismatch):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_campaign",
				Message: err.Error(),
			})
		default:
			return errors.InternalError(c, err)
		}
	}

	if report.Cancelled && h.metrics != nil {
		h.metrics.RecordCampaignCancelled()
	}

	return c.JSON(http.StatusOK, report)
}

// Preview returns the personalized message for one lead without sending
// anything or mutating any state.
func (h *CampaignHandler) Preview(c echo.Context) error {
	var req models.PreviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	lead, err := h.leads.Get(ctx, req.LeadID)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	tpl, err := h.templates.Get(ctx, req.TemplateID)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "template")
		}
		return errors.DatabaseError(c, err)
	}
	if tpl.Type != models.Channel(req.Channel) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_campaign",
			Message: "template channel does not match requested channel",
		})
	}

	message := h.personalizer.Personalize(ctx, *lead, *tpl)

	return c.JSON(http.StatusOK, models.PreviewResponse{
		LeadID:  lead.ID,
		Message: message,
	})
}

// RecentContacts returns the newest contact attempts across all leads
func (h *CampaignHandler) RecentContacts(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: "limit must be between 1 and 500",
			})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	attempts, err := h.ledger.Recent(ctx, limit)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, attempts)
}

// LeadContacts returns the contact history of a single lead, newest first
func (h *CampaignHandler) LeadContacts(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	attempts, err := h.ledger.ByLead(ctx, id)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, attempts)
}
