// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	ProgressService *service.ProgressService
	LedgerService   *service.LedgerService
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string  `json:"name" validate:"required"`
		Subject      string  `json:"subject"`
		BodyTemplate string  `json:"body_template"`
		CredentialID *string `json:"credential_id"`
		ScheduledAt  *string `json:"scheduled_at"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), ownerFromContext(r.Context()),
		body.Name, body.Subject, body.BodyTemplate, body.CredentialID, body.ScheduledAt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), ownerFromContext(r.Context()), page, pageSize, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := c.CampaignService.GetCampaign(r.Context(), ownerFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.CampaignService.DeleteCampaign(r.Context(), ownerFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Filters are optional; a send with no body targets every contact.
	var body struct {
		IncludeGroupID *string `json:"include_group_id"`
		ExcludeGroupID *string `json:"exclude_group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, appErrors.NewValidation("invalid request body"))
		return
	}

	result, err := c.CampaignService.SendCampaign(r.Context(), ownerFromContext(r.Context()), id,
		body.IncludeGroupID, body.ExcludeGroupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetProgress reports the live delivery breakdown for a campaign. The
// response shape is a contract with dashboards; field names stay put.
func (c *CampaignController) GetProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	progress, err := c.ProgressService.GetProgress(r.Context(), ownerFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// IngestEvent accepts a delivery-provider callback and feeds it into the
// ledger. Duplicate callbacks answer 200 with result "noop"; contradictory
// ones answer 409.
func (c *CampaignController) IngestEvent(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")

	var body struct {
		ContactID string     `json:"contact_id" validate:"required"`
		Status    string     `json:"status" validate:"required"`
		Timestamp *time.Time `json:"timestamp"`
		MessageID string     `json:"message_id"`
		Error     string     `json:"error"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	status, err := model.ParseDeliveryStatus(body.Status)
	if err != nil {
		writeError(w, appErrors.NewValidation(err.Error()))
		return
	}

	// Owner scoping: the campaign lookup answers 404 before the ledger is
	// touched for foreign campaigns.
	if _, err := c.CampaignService.GetCampaign(r.Context(), ownerFromContext(r.Context()), campaignID); err != nil {
		writeError(w, err)
		return
	}

	ts := time.Now()
	if body.Timestamp != nil {
		ts = *body.Timestamp
	}

	outcome, err := c.LedgerService.ApplyEvent(r.Context(), campaignID, body.ContactID, status, ts, body.MessageID, body.Error)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": string(outcome)})
}
