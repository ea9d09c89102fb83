package repository

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
)

// MemoryStore implements every repository interface in memory. It backs the
// service tests and local runs without a postgres instance, with the same
// semantics as the SQL repositories: owner scoping, unique constraints,
// cascading deletes, and versioned delivery updates.
type MemoryStore struct {
	mu          sync.Mutex
	contacts    map[string]*model.Contact
	groups      map[string]*model.ContactGroup
	memberships map[string]map[string]bool // groupID -> set of contactIDs
	campaigns   map[string]*model.Campaign
	records     map[string]*model.DeliveryRecord // campaignID + "/" + contactID
	credentials map[string]*model.SMTPCredential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts:    make(map[string]*model.Contact),
		groups:      make(map[string]*model.ContactGroup),
		memberships: make(map[string]map[string]bool),
		campaigns:   make(map[string]*model.Campaign),
		records:     make(map[string]*model.DeliveryRecord),
		credentials: make(map[string]*model.SMTPCredential),
	}
}

func recordKey(campaignID, contactID string) string { return campaignID + "/" + contactID }

// ---------------------- contacts ----------------------

func (s *MemoryStore) Create(ctx context.Context, c *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.contacts {
		if existing.OwnerID == c.OwnerID && existing.Email == c.Email {
			return appErrors.NewConflict("a contact with this email already exists")
		}
	}
	c.CreatedAt = time.Now()
	cp := *c
	s.contacts[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, ownerID string) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts := []model.Contact{}
	for _, c := range s.contacts {
		if c.OwnerID == ownerID {
			contacts = append(contacts, *c)
		}
	}
	return contacts, nil
}

func (s *MemoryStore) ListIDs(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for _, c := range s.contacts {
		if c.OwnerID == ownerID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s *MemoryStore) UpdateAttributes(ctx context.Context, ownerID, id string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return appErrors.NewNotFound("contact")
	}
	now := time.Now()
	c.Attributes = attrs
	c.UpdatedAt = &now
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return appErrors.NewNotFound("contact")
	}
	delete(s.contacts, id)
	for _, members := range s.memberships {
		delete(members, id)
	}
	return nil
}

// ---------------------- groups ----------------------

func (s *MemoryStore) CreateGroup(ctx context.Context, g *model.ContactGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.CreatedAt = time.Now()
	cp := *g
	s.groups[g.ID] = &cp
	s.memberships[g.ID] = make(map[string]bool)
	return nil
}

func (s *MemoryStore) GetGroupByID(ctx context.Context, ownerID, id string) (*model.ContactGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok || g.OwnerID != ownerID {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (s *MemoryStore) ListGroups(ctx context.Context, ownerID string) ([]model.ContactGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := []model.ContactGroup{}
	for _, g := range s.groups {
		if g.OwnerID == ownerID {
			groups = append(groups, *g)
		}
	}
	return groups, nil
}

func (s *MemoryStore) Rename(ctx context.Context, ownerID, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok || g.OwnerID != ownerID {
		return appErrors.NewNotFound("group")
	}
	g.Name = name
	return nil
}

func (s *MemoryStore) DeleteGroup(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok || g.OwnerID != ownerID {
		return appErrors.NewNotFound("group")
	}
	delete(s.groups, id)
	delete(s.memberships, id)
	return nil
}

func (s *MemoryStore) AddMember(ctx context.Context, ownerID, groupID, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok || g.OwnerID != ownerID {
		return appErrors.NewNotFound("group or contact")
	}
	c, ok := s.contacts[contactID]
	if !ok || c.OwnerID != ownerID {
		return appErrors.NewNotFound("group or contact")
	}
	if s.memberships[groupID][contactID] {
		return appErrors.NewConflict("contact is already in this group")
	}
	s.memberships[groupID][contactID] = true
	return nil
}

func (s *MemoryStore) RemoveMember(ctx context.Context, ownerID, groupID, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok || g.OwnerID != ownerID || !s.memberships[groupID][contactID] {
		return appErrors.NewNotFound("membership")
	}
	delete(s.memberships[groupID], contactID)
	return nil
}

func (s *MemoryStore) MemberIDs(ctx context.Context, ownerID, groupID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	g, ok := s.groups[groupID]
	if !ok || g.OwnerID != ownerID {
		return ids, nil
	}
	for contactID := range s.memberships[groupID] {
		ids = append(ids, contactID)
	}
	return ids, nil
}

// ---------------------- campaigns ----------------------

func (s *MemoryStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	cp := *c
	s.campaigns[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetCampaignByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok || c.OwnerID != ownerID {
		return nil, appErrors.NewNotFound("campaign")
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListCampaigns(ctx context.Context, ownerID string, offset, limit int, status string) ([]*model.Campaign, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []*model.Campaign{}
	for _, c := range s.campaigns {
		if c.OwnerID != ownerID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}
	total := len(matched)
	if offset >= total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return appErrors.NewNotFound("campaign")
	}
	now := time.Now()
	c.Status = status
	c.UpdatedAt = &now
	return nil
}

func (s *MemoryStore) ClaimSending(ctx context.Context, ownerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok || c.OwnerID != ownerID {
		return false, nil
	}
	if c.Status != model.CampaignDraft && c.Status != model.CampaignScheduled {
		return false, nil
	}
	now := time.Now()
	c.Status = model.CampaignSending
	c.UpdatedAt = &now
	return true, nil
}

func (s *MemoryStore) DeleteCampaign(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok || c.OwnerID != ownerID {
		return appErrors.NewNotFound("campaign")
	}
	delete(s.campaigns, id)
	for key, rec := range s.records {
		if rec.CampaignID == id {
			delete(s.records, key)
		}
	}
	return nil
}

// ---------------------- delivery records ----------------------

func (s *MemoryStore) CreatePending(ctx context.Context, campaignID string, contactIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := 0
	now := time.Now()
	for _, contactID := range contactIDs {
		key := recordKey(campaignID, contactID)
		if _, exists := s.records[key]; exists {
			continue
		}
		s.records[key] = &model.DeliveryRecord{
			CampaignID: campaignID,
			ContactID:  contactID,
			Status:     model.StatusPending,
			Version:    1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created++
	}
	return created, nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, campaignID, contactID string) (*model.DeliveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordKey(campaignID, contactID)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) UpdateVersioned(ctx context.Context, rec *model.DeliveryRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[recordKey(rec.CampaignID, rec.ContactID)]
	if !ok || current.Version != rec.Version {
		return false, nil
	}
	cp := *rec
	cp.Version = rec.Version + 1
	cp.UpdatedAt = time.Now()
	s.records[recordKey(rec.CampaignID, rec.ContactID)] = &cp
	return true, nil
}

func (s *MemoryStore) StatusCounts(ctx context.Context, campaignID string) (map[model.DeliveryStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[model.DeliveryStatus]int{}
	for _, st := range model.AllDeliveryStatuses {
		counts[st] = 0
	}
	for _, rec := range s.records {
		if rec.CampaignID == campaignID {
			counts[rec.Status]++
		}
	}
	return counts, nil
}

// ---------------------- smtp credentials ----------------------

func (s *MemoryStore) CreateCredential(ctx context.Context, c *model.SMTPCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.credentials {
		if existing.OwnerID == c.OwnerID && existing.Label == c.Label {
			return appErrors.NewConflict("a credential with this label already exists")
		}
	}
	c.CreatedAt = time.Now()
	cp := *c
	s.credentials[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetCredentialByID(ctx context.Context, ownerID, id string) (*model.SMTPCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[id]
	if !ok || c.OwnerID != ownerID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListCredentials(ctx context.Context, ownerID string) ([]model.SMTPCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := []model.SMTPCredential{}
	for _, c := range s.credentials {
		if c.OwnerID == ownerID {
			creds = append(creds, *c)
		}
	}
	return creds, nil
}

func (s *MemoryStore) DeleteCredential(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[id]
	if !ok || c.OwnerID != ownerID {
		return appErrors.NewNotFound("credential")
	}
	delete(s.credentials, id)
	return nil
}

// Interface views. The method sets overlap (Create, GetByID, List, Delete
// exist per entity), so each family gets a thin named adapter.

type memoryContacts struct{ *MemoryStore }
type memoryGroups struct{ *MemoryStore }
type memoryCampaigns struct{ *MemoryStore }
type memoryDeliveries struct{ *MemoryStore }
type memoryCredentials struct{ *MemoryStore }

func (s *MemoryStore) Contacts() ContactRepositoryInterface       { return memoryContacts{s} }
func (s *MemoryStore) Groups() GroupRepositoryInterface           { return memoryGroups{s} }
func (s *MemoryStore) Campaigns() CampaignRepositoryInterface     { return memoryCampaigns{s} }
func (s *MemoryStore) Deliveries() DeliveryRepositoryInterface    { return memoryDeliveries{s} }
func (s *MemoryStore) Credentials() CredentialRepositoryInterface { return memoryCredentials{s} }

func (m memoryGroups) Create(ctx context.Context, g *model.ContactGroup) error {
	return m.CreateGroup(ctx, g)
}

func (m memoryGroups) GetByID(ctx context.Context, ownerID, id string) (*model.ContactGroup, error) {
	return m.GetGroupByID(ctx, ownerID, id)
}

func (m memoryGroups) List(ctx context.Context, ownerID string) ([]model.ContactGroup, error) {
	return m.ListGroups(ctx, ownerID)
}

func (m memoryGroups) Delete(ctx context.Context, ownerID, id string) error {
	return m.DeleteGroup(ctx, ownerID, id)
}

func (m memoryCampaigns) Create(ctx context.Context, c *model.Campaign) error {
	return m.CreateCampaign(ctx, c)
}

func (m memoryCampaigns) GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	return m.GetCampaignByID(ctx, ownerID, id)
}

func (m memoryCampaigns) List(ctx context.Context, ownerID string, offset, limit int, status string) ([]*model.Campaign, int, error) {
	return m.ListCampaigns(ctx, ownerID, offset, limit, status)
}

func (m memoryCampaigns) Delete(ctx context.Context, ownerID, id string) error {
	return m.DeleteCampaign(ctx, ownerID, id)
}

func (m memoryDeliveries) Get(ctx context.Context, campaignID, contactID string) (*model.DeliveryRecord, error) {
	return m.GetRecord(ctx, campaignID, contactID)
}

func (m memoryCredentials) Create(ctx context.Context, c *model.SMTPCredential) error {
	return m.CreateCredential(ctx, c)
}

func (m memoryCredentials) GetByID(ctx context.Context, ownerID, id string) (*model.SMTPCredential, error) {
	return m.GetCredentialByID(ctx, ownerID, id)
}

func (m memoryCredentials) List(ctx context.Context, ownerID string) ([]model.SMTPCredential, error) {
	return m.ListCredentials(ctx, ownerID)
}

func (m memoryCredentials) Delete(ctx context.Context, ownerID, id string) error {
	return m.DeleteCredential(ctx, ownerID, id)
}

var (
	_ ContactRepositoryInterface    = memoryContacts{}
	_ GroupRepositoryInterface      = memoryGroups{}
	_ CampaignRepositoryInterface   = memoryCampaigns{}
	_ DeliveryRepositoryInterface   = memoryDeliveries{}
	_ CredentialRepositoryInterface = memoryCredentials{}
)
