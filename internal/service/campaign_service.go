// internal/service/campaign_service.go
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/queue"
	"github.com/duskraven/mailraven-backend/internal/repository"
)

// CampaignService coordinates a campaign's lifecycle: CRUD plus send
// initiation, which resolves the segment, lays down pending ledger rows and
// hands the recipients to the sending side.
type CampaignService struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	CredentialRepo repository.CredentialRepositoryInterface
	Segments       *SegmentService
	Ledger         *LedgerService
	Queue          queue.Publisher
}

// SendResult reports what a send initiation did.
type SendResult struct {
	CampaignID     string `json:"campaign_id"`
	SegmentSize    int    `json:"segment_size"`
	RecordsCreated int    `json:"records_created"`
	Queued         int    `json:"queued"`
	Status         string `json:"status"`
}

func (s *CampaignService) CreateCampaign(ctx context.Context, ownerID, name, subject, bodyTemplate string, credentialID *string, scheduledAt *string) (*model.Campaign, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	if name == "" {
		return nil, appErrors.NewValidation("campaign name is required")
	}

	c := &model.Campaign{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		Subject:      subject,
		BodyTemplate: bodyTemplate,
		Status:       model.CampaignDraft,
	}

	if credentialID != nil {
		cred, err := s.CredentialRepo.GetByID(ctx, ownerID, *credentialID)
		if err != nil {
			return nil, err
		}
		if cred == nil {
			return nil, appErrors.NewNotFound("credential")
		}
		c.CredentialID = credentialID
	}

	if scheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *scheduledAt)
		if err != nil {
			return nil, appErrors.NewValidation("scheduled_at must be RFC3339")
		}
		c.ScheduledAt = &t
		c.Status = model.CampaignScheduled
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, ownerID string, page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if ownerID == "" {
		return nil, nil, appErrors.NewUnauthorized()
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.List(ctx, ownerID, offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	return s.CampaignRepo.GetByID(ctx, ownerID, id)
}

// DeleteCampaign removes the campaign and, via cascade, its ledger rows.
func (s *CampaignService) DeleteCampaign(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorized()
	}
	return s.CampaignRepo.Delete(ctx, ownerID, id)
}

// SendCampaign initiates the send: resolve the segment, claim the campaign,
// create pending ledger rows and queue one job per recipient.
//
// Initiation is at-most-once per campaign. The claim is a conditional
// status update, so a second call (or a concurrent one) finds the campaign
// already past draft, gets Conflict and creates zero records.
func (s *CampaignService) SendCampaign(ctx context.Context, ownerID, campaignID string, includeGroupID, excludeGroupID *string) (*SendResult, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}

	if _, err := s.CampaignRepo.GetByID(ctx, ownerID, campaignID); err != nil {
		return nil, err
	}

	segment, err := s.Segments.ResolveSegment(ctx, ownerID, includeGroupID, excludeGroupID)
	if err != nil {
		return nil, err
	}

	claimed, err := s.CampaignRepo.ClaimSending(ctx, ownerID, campaignID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, appErrors.NewConflict("campaign has already been sent")
	}

	created, err := s.Ledger.CreatePending(ctx, campaignID, segment)
	if err != nil {
		return nil, err
	}

	result := &SendResult{
		CampaignID:     campaignID,
		SegmentSize:    len(segment),
		RecordsCreated: created,
		Status:         model.CampaignSending,
	}

	for _, contactID := range segment {
		job := queue.SendJob{OwnerID: ownerID, CampaignID: campaignID, ContactID: contactID}
		if err := s.Queue.Publish(queue.SendTopic, job); err != nil {
			log.Println("failed to enqueue send job for contact", contactID, ":", err)
			continue
		}
		result.Queued++
	}

	if len(segment) == 0 {
		// Nothing to send; don't leave the campaign stuck in sending.
		if err := s.CampaignRepo.UpdateStatus(ctx, campaignID, model.CampaignCompleted); err != nil {
			return result, err
		}
		result.Status = model.CampaignCompleted
	}

	return result, nil
}
