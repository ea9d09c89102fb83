package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/queue"
	"github.com/duskraven/mailraven-backend/internal/repository"
	"github.com/duskraven/mailraven-backend/internal/service"
)

func newSenderFixture(t *testing.T, send service.SendFunc) (*service.Sender, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &model.Contact{
		ID: "c1", OwnerID: owner, Email: "alice@example.com",
		Attributes: map[string]string{"first_name": "Alice"},
	}))
	require.NoError(t, store.CreateCampaign(ctx, &model.Campaign{
		ID: "camp-1", OwnerID: owner, Name: "launch",
		Subject: "Hi {first_name}", BodyTemplate: "Hello {first_name}!",
		Status: model.CampaignSending,
	}))

	ledger := &service.LedgerService{DeliveryRepo: store.Deliveries()}
	_, err := ledger.CreatePending(ctx, "camp-1", []string{"c1"})
	require.NoError(t, err)

	return &service.Sender{
		ContactRepo:  store.Contacts(),
		CampaignRepo: store.Campaigns(),
		Ledger:       ledger,
		SendFunc:     send,
	}, store
}

func Test_Sender_marks_record_sent_and_completes_campaign(t *testing.T) {
	var gotTo, gotSubject string
	sender, store := newSenderFixture(t, func(to, subject, body string) (string, error) {
		gotTo, gotSubject = to, subject
		return "provider-msg-1", nil
	})
	ctx := context.Background()

	err := sender.Process(ctx, queue.SendJob{OwnerID: owner, CampaignID: "camp-1", ContactID: "c1"})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", gotTo)
	assert.Equal(t, "Hi Alice", gotSubject)

	rec, err := store.GetRecord(ctx, "camp-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, rec.Status)
	assert.Equal(t, "provider-msg-1", rec.MessageID)
	assert.NotNil(t, rec.SentAt)

	campaign, err := store.GetCampaignByID(ctx, owner, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, model.CampaignCompleted, campaign.Status)
}

func Test_Sender_send_failure_is_returned_for_retry(t *testing.T) {
	sender, store := newSenderFixture(t, func(to, subject, body string) (string, error) {
		return "", errors.New("connection refused")
	})
	ctx := context.Background()
	job := queue.SendJob{OwnerID: owner, CampaignID: "camp-1", ContactID: "c1"}

	err := sender.Process(ctx, job)
	assert.Error(t, err)

	// The record stays pending until the queue gives up.
	rec, err := store.GetRecord(ctx, "camp-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, rec.Status)

	sender.Fail(ctx, job, "connection refused")

	rec, err = store.GetRecord(ctx, "camp-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, rec.Status)
	assert.Equal(t, "connection refused", rec.ErrorMessage)
}

func Test_Sender_deleted_contact_fails_the_record(t *testing.T) {
	sender, store := newSenderFixture(t, func(to, subject, body string) (string, error) {
		t.Fatal("send must not be attempted for a deleted contact")
		return "", nil
	})
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, owner, "c1"))

	err := sender.Process(ctx, queue.SendJob{OwnerID: owner, CampaignID: "camp-1", ContactID: "c1"})
	require.NoError(t, err)

	rec, err := store.GetRecord(ctx, "camp-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, rec.Status)
}

// spyCache records invalidations and serves nothing, so reads always hit
// the repositories.
type spyCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *spyCache) GetSnapshot(ctx context.Context, campaignID string) ([]byte, error) {
	return nil, nil
}

func (c *spyCache) StoreSnapshot(ctx context.Context, campaignID string, snapshot []byte, ttl time.Duration) error {
	return nil
}

func (c *spyCache) Invalidate(ctx context.Context, campaignID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, campaignID)
	return nil
}

func Test_Sender_completion_invalidates_progress_cache(t *testing.T) {
	sender, store := newSenderFixture(t, func(to, subject, body string) (string, error) {
		return "provider-msg-1", nil
	})
	spy := &spyCache{}
	sender.Ledger.Cache = spy
	ctx := context.Background()

	err := sender.Process(ctx, queue.SendJob{OwnerID: owner, CampaignID: "camp-1", ContactID: "c1"})
	require.NoError(t, err)

	campaign, err := store.GetCampaignByID(ctx, owner, "camp-1")
	require.NoError(t, err)
	require.Equal(t, model.CampaignCompleted, campaign.Status)

	// Once for the ledger write, once more after the status change, so a
	// snapshot cached between the two cannot keep reporting "sending".
	spy.mu.Lock()
	defer spy.mu.Unlock()
	assert.Equal(t, []string{"camp-1", "camp-1"}, spy.invalidated)
}

func Test_RenderTemplate_substitutes_attributes(t *testing.T) {
	got := service.RenderTemplate("Hi {first_name} from {city}", map[string]string{
		"first_name": "Alice",
		"city":       "",
	})
	assert.Equal(t, "Hi Alice from <unknown>", got)
}
