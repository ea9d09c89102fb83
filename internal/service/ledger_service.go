package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/duskraven/mailraven-backend/internal/cache"
	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/repository"
)

// ApplyOutcome is the discriminated result of feeding a provider callback
// into the ledger. Rejections surface as errors, never as a silent outcome.
type ApplyOutcome string

const (
	ApplyApplied ApplyOutcome = "applied"
	ApplyNoop    ApplyOutcome = "noop"
)

// applyMaxAttempts bounds the optimistic-update retry loop under contention
// on a single record.
const applyMaxAttempts = 5

// LedgerService owns the per-(campaign, contact) delivery records and
// enforces the status state machine.
type LedgerService struct {
	DeliveryRepo repository.DeliveryRepositoryInterface
	Cache        cache.ProgressCache // optional
}

// CreatePending creates one pending record per contact and reports how many
// were new. Existing pairs are skipped, never reset.
func (s *LedgerService) CreatePending(ctx context.Context, campaignID string, contactIDs []string) (int, error) {
	created, err := s.DeliveryRepo.CreatePending(ctx, campaignID, contactIDs)
	if err != nil {
		return 0, err
	}
	s.InvalidateProgress(ctx, campaignID)
	return created, nil
}

// ApplyEvent advances one record to newStatus.
//
// Forward transitions are applied and set each milestone timestamp the
// first time it is reached; a clicked event on a record still at sent marks
// both opened_at and clicked_at with the event timestamp. A duplicate of
// the current status is a noop and overwrites nothing. Contradictions
// (regressions, a bounce after an open) return an InvalidTransition error,
// and an unknown pair returns NotFound.
//
// The update is an optimistic read-modify-write on the record's version, so
// concurrent callbacks for the same record serialize while distinct records
// proceed independently.
func (s *LedgerService) ApplyEvent(ctx context.Context, campaignID, contactID string, newStatus model.DeliveryStatus, timestamp time.Time, messageID, errorMessage string) (ApplyOutcome, error) {
	for attempt := 0; attempt < applyMaxAttempts; attempt++ {
		rec, err := s.DeliveryRepo.Get(ctx, campaignID, contactID)
		if err != nil {
			return "", err
		}
		if rec == nil {
			return "", appErrors.NewNotFound("delivery record")
		}

		switch model.EvaluateTransition(rec.Status, newStatus) {
		case model.TransitionNoop:
			return ApplyNoop, nil
		case model.TransitionRejected:
			return "", appErrors.NewInvalidTransition(string(rec.Status), string(newStatus))
		}

		sent, opened, clicked := model.MilestonesReached(rec.Status, newStatus)
		rec.Status = newStatus
		ts := timestamp
		if sent && rec.SentAt == nil {
			rec.SentAt = &ts
		}
		if opened && rec.OpenedAt == nil {
			rec.OpenedAt = &ts
		}
		if clicked && rec.ClickedAt == nil {
			rec.ClickedAt = &ts
		}
		if messageID != "" && rec.MessageID == "" {
			rec.MessageID = messageID
		}
		if newStatus == model.StatusBounced || newStatus == model.StatusFailed {
			rec.ErrorMessage = errorMessage
		}

		ok, err := s.DeliveryRepo.UpdateVersioned(ctx, rec)
		if err != nil {
			return "", err
		}
		if ok {
			s.InvalidateProgress(ctx, campaignID)
			return ApplyApplied, nil
		}
		// Lost the version race; re-read and re-evaluate.
	}
	return "", appErrors.NewStorage(fmt.Errorf("record %s/%s: too much contention", campaignID, contactID))
}

// InvalidateProgress drops the campaign's cached progress snapshot. Called
// after every ledger write and after campaign status changes, so a snapshot
// never outlives the state it reported on by more than the TTL.
func (s *LedgerService) InvalidateProgress(ctx context.Context, campaignID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, campaignID); err != nil {
		log.Println("failed to invalidate progress cache:", err)
	}
}
