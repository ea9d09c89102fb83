package service

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/duskraven/mailraven-backend/internal/cache"
	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/repository"
)

// Progress is the reporting contract dashboards poll. StatusCounts carries
// every status key even at zero so callers never special-case absent keys.
type Progress struct {
	CampaignID   string                       `json:"campaign_id"`
	Status       string                       `json:"status"`
	Progress     int                          `json:"progress"`
	TotalCount   int                          `json:"total_count"`
	StatusCounts map[model.DeliveryStatus]int `json:"status_counts"`
}

// ProgressService computes live campaign progress from the ledger. Reads
// are point-in-time snapshots; they tolerate concurrent event ingestion.
type ProgressService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	Cache        cache.ProgressCache // optional
	CacheTTL     time.Duration
}

// GetProgress returns the campaign's status counts and percent complete. A
// record counts as processed once it is anything other than pending;
// percent is processed/total rounded half away from zero, and 0 for a
// campaign with no records.
func (s *ProgressService) GetProgress(ctx context.Context, ownerID, campaignID string) (*Progress, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}

	campaign, err := s.CampaignRepo.GetByID(ctx, ownerID, campaignID)
	if err != nil {
		return nil, err
	}

	if cached := s.fromCache(ctx, campaignID); cached != nil {
		return cached, nil
	}

	counts, err := s.DeliveryRepo.StatusCounts(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	processed := total - counts[model.StatusPending]

	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(processed) / float64(total) * 100))
	}

	p := &Progress{
		CampaignID:   campaign.ID,
		Status:       campaign.Status,
		Progress:     percent,
		TotalCount:   total,
		StatusCounts: counts,
	}
	s.toCache(ctx, campaignID, p)
	return p, nil
}

func (s *ProgressService) fromCache(ctx context.Context, campaignID string) *Progress {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.GetSnapshot(ctx, campaignID)
	if err != nil {
		log.Println("failed to read progress cache:", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	var p Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return &p
}

func (s *ProgressService) toCache(ctx context.Context, campaignID string, p *Progress) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	if err := s.Cache.StoreSnapshot(ctx, campaignID, raw, ttl); err != nil {
		log.Println("failed to store progress cache:", err)
	}
}
