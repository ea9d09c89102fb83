package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/repository"
	"github.com/duskraven/mailraven-backend/internal/service"
)

const owner = "owner-1"

func strPtr(s string) *string { return &s }

func newSegmentFixture(t *testing.T) (*service.SegmentService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := &service.SegmentService{
		ContactRepo: store.Contacts(),
		GroupRepo:   store.Groups(),
	}

	ctx := context.Background()
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		err := store.Create(ctx, &model.Contact{ID: id, OwnerID: owner, Email: id + "@example.com"})
		assert.NoError(t, err)
	}
	assert.NoError(t, store.CreateGroup(ctx, &model.ContactGroup{ID: "g1", OwnerID: owner, Name: "newsletter"}))
	assert.NoError(t, store.CreateGroup(ctx, &model.ContactGroup{ID: "g2", OwnerID: owner, Name: "unsubscribed"}))
	for _, id := range []string{"c1", "c2", "c3"} {
		assert.NoError(t, store.AddMember(ctx, owner, "g1", id))
	}
	for _, id := range []string{"c2", "c3"} {
		assert.NoError(t, store.AddMember(ctx, owner, "g2", id))
	}
	return svc, store
}

func Test_ResolveSegment_no_filters_returns_all_contacts(t *testing.T) {
	svc, _ := newSegmentFixture(t)

	got, err := svc.ResolveSegment(context.Background(), owner, nil, nil)

	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2", "c3", "c4"}, got)
}

func Test_ResolveSegment_include_only(t *testing.T) {
	svc, _ := newSegmentFixture(t)

	got, err := svc.ResolveSegment(context.Background(), owner, strPtr("g1"), nil)

	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, got)
}

func Test_ResolveSegment_exclude_only(t *testing.T) {
	svc, _ := newSegmentFixture(t)

	got, err := svc.ResolveSegment(context.Background(), owner, nil, strPtr("g2"))

	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c4"}, got)
}

func Test_ResolveSegment_exclusion_wins_over_inclusion(t *testing.T) {
	svc, _ := newSegmentFixture(t)
	ctx := context.Background()

	both, err := svc.ResolveSegment(ctx, owner, strPtr("g1"), strPtr("g2"))
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1"}, both)

	// Property: include-with-exclude equals include minus exclude.
	include, err := svc.ResolveSegment(ctx, owner, strPtr("g1"), nil)
	assert.NoError(t, err)
	exclude, err := svc.ResolveSegment(ctx, owner, strPtr("g2"), nil)
	assert.NoError(t, err)

	excluded := map[string]bool{}
	for _, id := range exclude {
		excluded[id] = true
	}
	var want []string
	for _, id := range include {
		if !excluded[id] {
			want = append(want, id)
		}
	}
	assert.ElementsMatch(t, want, both)
}

func Test_ResolveSegment_unknown_groups_resolve_to_empty_sets(t *testing.T) {
	svc, _ := newSegmentFixture(t)
	ctx := context.Background()

	got, err := svc.ResolveSegment(ctx, owner, strPtr("no-such-group"), nil)
	assert.NoError(t, err)
	assert.Empty(t, got)

	// Unknown exclusion behaves as "no exclusion".
	got, err = svc.ResolveSegment(ctx, owner, strPtr("g1"), strPtr("no-such-group"))
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2", "c3"}, got)
}

func Test_ResolveSegment_foreign_owner_group_reads_as_empty(t *testing.T) {
	svc, store := newSegmentFixture(t)
	ctx := context.Background()

	assert.NoError(t, store.CreateGroup(ctx, &model.ContactGroup{ID: "g-foreign", OwnerID: "owner-2", Name: "theirs"}))

	got, err := svc.ResolveSegment(ctx, owner, strPtr("g-foreign"), nil)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func Test_ResolveSegment_requires_owner(t *testing.T) {
	svc, _ := newSegmentFixture(t)

	_, err := svc.ResolveSegment(context.Background(), "", nil, nil)

	assert.True(t, appErrors.IsUnauthorized(err))
}
