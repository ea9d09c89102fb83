package service

import (
	"context"

	"github.com/google/uuid"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/repository"
)

type GroupService struct {
	GroupRepo   repository.GroupRepositoryInterface
	ContactRepo repository.ContactRepositoryInterface
}

func (s *GroupService) CreateGroup(ctx context.Context, ownerID, name string) (*model.ContactGroup, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	if name == "" {
		return nil, appErrors.NewValidation("group name is required")
	}

	g := &model.ContactGroup{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
	}
	if err := s.GroupRepo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GroupService) ListGroups(ctx context.Context, ownerID string) ([]model.ContactGroup, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	return s.GroupRepo.List(ctx, ownerID)
}

func (s *GroupService) RenameGroup(ctx context.Context, ownerID, id, name string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorized()
	}
	if name == "" {
		return appErrors.NewValidation("group name is required")
	}
	return s.GroupRepo.Rename(ctx, ownerID, id, name)
}

func (s *GroupService) DeleteGroup(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorized()
	}
	return s.GroupRepo.Delete(ctx, ownerID, id)
}

func (s *GroupService) AddContact(ctx context.Context, ownerID, groupID, contactID string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorized()
	}
	return s.GroupRepo.AddMember(ctx, ownerID, groupID, contactID)
}

func (s *GroupService) RemoveContact(ctx context.Context, ownerID, groupID, contactID string) error {
	if ownerID == "" {
		return appErrors.NewUnauthorized()
	}
	return s.GroupRepo.RemoveMember(ctx, ownerID, groupID, contactID)
}

// ListMembers resolves the group's membership edges into full contacts.
func (s *GroupService) ListMembers(ctx context.Context, ownerID, groupID string) ([]model.Contact, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}
	g, err := s.GroupRepo.GetByID(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, appErrors.NewNotFound("group")
	}

	ids, err := s.GroupRepo.MemberIDs(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}

	members := []model.Contact{}
	for _, id := range ids {
		c, err := s.ContactRepo.GetByID(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			members = append(members, *c)
		}
	}
	return members, nil
}
