package service

import (
	"context"

	"github.com/google/uuid"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/repository"
)

type ContactService struct {
	ContactRepo repository.ContactRepositoryInterface
}

func (s *ContactService) CreateContact(ctx context.Context, ownerID, email string, attrs map[string]string) (*model.Contact, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	if email == "" {
		return nil, appErrors.NewValidation("email is required")
	}

	c := &model.Contact{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Email:      email,
		Attributes: attrs,
	}
	if c.Attributes == nil {
		c.Attributes = map[string]string{}
	}
	if err := s.ContactRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) GetContact(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	c, err := s.ContactRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewNotFound("contact")
	}
	return c, nil
}

func (s *ContactService) ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	return s.ContactRepo.List(ctx, ownerID)
}

func (s *ContactService) UpdateAttributes(ctx context.Context, ownerID, id string, attrs map[string]string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorized()
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	return s.ContactRepo.UpdateAttributes(ctx, ownerID, id, attrs)
}

// DeleteContact removes the contact; its group memberships cascade away
// with it.
func (s *ContactService) DeleteContact(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorized()
	}
	return s.ContactRepo.Delete(ctx, ownerID, id)
}
