package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/queue"
	"github.com/duskraven/mailraven-backend/internal/repository"
)

// SendFunc dispatches one rendered message and returns the provider message
// id. Swapped out for a mock in tests and local runs.
type SendFunc func(to, subject, body string) (string, error)

// Sender processes queued send jobs: render, dispatch, record the outcome
// in the ledger.
type Sender struct {
	ContactRepo  repository.ContactRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Ledger       *LedgerService
	SendFunc     SendFunc
}

// Process handles one job. A send failure is returned to the caller so the
// queue can retry; the ledger is only marked failed through Fail once
// retries are exhausted.
func (s *Sender) Process(ctx context.Context, job queue.SendJob) error {
	campaign, err := s.CampaignRepo.GetByID(ctx, job.OwnerID, job.CampaignID)
	if err != nil {
		return err
	}

	contact, err := s.ContactRepo.GetByID(ctx, job.OwnerID, job.ContactID)
	if err != nil {
		return err
	}
	if contact == nil {
		// Contact deleted between segment resolution and dispatch.
		s.Fail(ctx, job, "contact no longer exists")
		return nil
	}

	data := map[string]string{"email": contact.Email}
	for k, v := range contact.Attributes {
		data[k] = v
	}
	subject := RenderTemplate(campaign.Subject, data)
	body := RenderTemplate(campaign.BodyTemplate, data)

	messageID, err := s.SendFunc(contact.Email, subject, body)
	if err != nil {
		return err
	}

	if _, err := s.Ledger.ApplyEvent(ctx, job.CampaignID, job.ContactID, model.StatusSent, time.Now(), messageID, ""); err != nil {
		log.Println("failed to record sent status:", err)
	}
	s.finalize(ctx, job.CampaignID)
	return nil
}

// Fail marks the job's record failed after the queue has given up on it.
func (s *Sender) Fail(ctx context.Context, job queue.SendJob, errMsg string) {
	if _, err := s.Ledger.ApplyEvent(ctx, job.CampaignID, job.ContactID, model.StatusFailed, time.Now(), "", errMsg); err != nil {
		log.Println("failed to record failed status:", err)
	}
	s.finalize(ctx, job.CampaignID)
}

// finalize marks the campaign completed once no record is still pending.
func (s *Sender) finalize(ctx context.Context, campaignID string) {
	counts, err := s.Ledger.DeliveryRepo.StatusCounts(ctx, campaignID)
	if err != nil {
		log.Println("failed to check campaign completion:", err)
		return
	}
	if counts[model.StatusPending] > 0 {
		return
	}
	if err := s.CampaignRepo.UpdateStatus(ctx, campaignID, model.CampaignCompleted); err != nil {
		log.Println("failed to mark campaign completed:", err)
		return
	}
	// A progress read between the ledger write and this status change can
	// re-cache a "sending" snapshot; drop it again now that the status moved.
	s.Ledger.InvalidateProgress(ctx, campaignID)
}

// MockSender simulates dispatch with 90% success
func MockSender(to, subject, body string) (string, error) {
	if rand.Float64() < 0.9 {
		return uuid.NewString(), nil
	}
	return "", fmt.Errorf("mock smtp rejected recipient %s", to)
}
