package service

import (
	"context"

	"github.com/google/uuid"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/repository"
)

// CredentialService manages the SMTP settings campaigns send through.
// Actual transport stays with the sending side; this is bookkeeping only.
type CredentialService struct {
	CredentialRepo repository.CredentialRepositoryInterface
}

func (s *CredentialService) CreateCredential(ctx context.Context, ownerID, label, host string, port int, username, fromAddress string) (*model.SMTPCredential, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	if host == "" || fromAddress == "" {
		return nil, appErrors.NewValidation("host and from_address are required")
	}
	if port <= 0 {
		port = 587
	}

	c := &model.SMTPCredential{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Label:       label,
		Host:        host,
		Port:        port,
		Username:    username,
		FromAddress: fromAddress,
	}
	if err := s.CredentialRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CredentialService) GetCredential(ctx context.Context, ownerID, id string) (*model.SMTPCredential, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	c, err := s.CredentialRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewNotFound("credential")
	}
	return c, nil
}

func (s *CredentialService) ListCredentials(ctx context.Context, ownerID string) ([]model.SMTPCredential, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	return s.CredentialRepo.List(ctx, ownerID)
}

func (s *CredentialService) DeleteCredential(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorized()
	}
	return s.CredentialRepo.Delete(ctx, ownerID, id)
}
