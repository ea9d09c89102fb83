package service

import (
	"context"

	"github.com/samber/lo"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/repository"
)

// SegmentService resolves the set of contacts a campaign sends to from
// inclusion/exclusion group filters. Pure read, no side effects.
type SegmentService struct {
	ContactRepo repository.ContactRepositoryInterface
	GroupRepo   repository.GroupRepositoryInterface
}

// ResolveSegment returns the owner's contact ids matching the filters.
//
// No filters: every contact the owner has. An include group narrows to its
// members; an exclude group removes its members from the result, so a
// contact in both groups stays excluded. Unknown or foreign group ids
// resolve to empty membership sets rather than errors, which makes a bad
// excludeGroupID behave as "no exclusion". The result is a set: duplicate
// memberships collapse and order carries no meaning.
func (s *SegmentService) ResolveSegment(ctx context.Context, ownerID string, includeGroupID, excludeGroupID *string) ([]string, error) {
	if ownerID == "" {
		return nil, appErrors.NewUnauthorized()
	}

	var base []string
	var err error
	if includeGroupID != nil {
		base, err = s.GroupRepo.MemberIDs(ctx, ownerID, *includeGroupID)
	} else {
		base, err = s.ContactRepo.ListIDs(ctx, ownerID)
	}
	if err != nil {
		return nil, err
	}
	base = lo.Uniq(base)

	if excludeGroupID == nil {
		return base, nil
	}

	excluded, err := s.GroupRepo.MemberIDs(ctx, ownerID, *excludeGroupID)
	if err != nil {
		return nil, err
	}
	return lo.Without(base, excluded...), nil
}
