package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
	"github.com/duskraven/mailraven-backend/internal/model"
	"github.com/duskraven/mailraven-backend/internal/repository"
	"github.com/duskraven/mailraven-backend/internal/service"
)

func newLedgerFixture(t *testing.T, contactIDs ...string) (*service.LedgerService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	ledger := &service.LedgerService{DeliveryRepo: store.Deliveries()}
	created, err := ledger.CreatePending(context.Background(), "camp-1", contactIDs)
	require.NoError(t, err)
	require.Equal(t, len(contactIDs), created)
	return ledger, store
}

func Test_CreatePending_skips_existing_pairs(t *testing.T) {
	ledger, store := newLedgerFixture(t, "c1", "c2")
	ctx := context.Background()

	// Advance one record so a re-run has something it must not reset.
	_, err := ledger.ApplyEvent(ctx, "camp-1", "c1", model.StatusSent, time.Now(), "msg-1", "")
	require.NoError(t, err)

	created, err := ledger.CreatePending(ctx, "camp-1", []string{"c1", "c2", "c3"})
	assert.NoError(t, err)
	assert.Equal(t, 1, created)

	rec, err := store.GetRecord(ctx, "camp-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, rec.Status, "existing record must not be reset to pending")
}

func Test_ApplyEvent_is_idempotent(t *testing.T) {
	ledger, store := newLedgerFixture(t, "c1")
	ctx := context.Background()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	outcome, err := ledger.ApplyEvent(ctx, "camp-1", "c1", model.StatusSent, first, "msg-1", "")
	require.NoError(t, err)
	assert.Equal(t, service.ApplyApplied, outcome)

	outcome, err = ledger.ApplyEvent(ctx, "camp-1", "c1", model.StatusSent, second, "msg-other", "")
	require.NoError(t, err)
	assert.Equal(t, service.ApplyNoop, outcome)

	rec, err := store.GetRecord(ctx, "camp-1", "c1")
	require.NoError(t, err)
	require.NotNil(t, rec.SentAt)
	assert.True(t, rec.SentAt.Equal(first), "duplicate events must not overwrite the first timestamp")
	assert.Equal(t, "msg-1", rec.MessageID)
}

func Test_ApplyEvent_terminal_states_reject_live_statuses(t *testing.T) {
	ledger, _ := newLedgerFixture(t, "c1", "c2")
	ctx := context.Background()
	now := time.Now()

	_, err := ledger.ApplyEvent(ctx, "camp-1", "c1", model.StatusBounced, now, "", "mailbox full")
	require.NoError(t, err)
	_, err = ledger.ApplyEvent(ctx, "camp-1", "c2", model.StatusFailed, now, "", "smtp timeout")
	require.NoError(t, err)

	for _, status := range []model.DeliveryStatus{model.StatusSent, model.StatusDelivered, model.StatusOpened, model.StatusClicked} {
		_, err := ledger.ApplyEvent(ctx, "camp-1", "c1", status, now, "", "")
		assert.True(t, appErrors.IsInvalidTransition(err), "bounced record accepted %s", status)
		_, err = ledger.ApplyEvent(ctx, "camp-1", "c2", status, now, "", "")
		assert.True(t, appErrors.IsInvalidTransition(err), "failed record accepted %s", status)
	}
}

func Test_ApplyEvent_clicked_backfills_opened(t *testing.T) {
	ledger, store := newLedgerFixture(t, "c1")
	ctx := context.Background()
	sentAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clickedAt := sentAt.Add(30 * time.Minute)

	_, err := ledger.ApplyEvent(ctx, "camp-1", "c1", model.StatusSent, sentAt, "msg-1", "")
	require.NoError(t, err)

	outcome, err := ledger.ApplyEvent(ctx, "camp-1", "c1", model.StatusClicked, clickedAt, "", "")
	require.NoError(t, err)
	assert.Equal(t, service.ApplyApplied, outcome)

	rec, err := store.GetRecord(ctx, "camp-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClicked, rec.Status)
	require.NotNil(t, rec.OpenedAt)
	require.NotNil(t, rec.ClickedAt)
	assert.True(t, rec.OpenedAt.Equal(clickedAt))
	assert.True(t, rec.ClickedAt.Equal(clickedAt))
}

func Test_ApplyEvent_unknown_record_is_not_found(t *testing.T) {
	ledger, _ := newLedgerFixture(t, "c1")

	_, err := ledger.ApplyEvent(context.Background(), "camp-1", "nobody", model.StatusSent, time.Now(), "", "")

	assert.True(t, appErrors.IsNotFound(err))
}

func Test_ApplyEvent_concurrent_callbacks_settle_consistently(t *testing.T) {
	ledger, store := newLedgerFixture(t, "c1")
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.ApplyEvent(ctx, "camp-1", "c1", model.StatusSent, ts, "msg-1", "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	rec, err := store.GetRecord(ctx, "camp-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, rec.Status)
	require.NotNil(t, rec.SentAt)
	assert.True(t, rec.SentAt.Equal(ts))
}
