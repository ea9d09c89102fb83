package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
)

func newTestQueue() *InMemoryQueue {
	q := NewInMemoryQueue()
	q.Backoff = time.Millisecond
	return q
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	q := newTestQueue()

	var wg sync.WaitGroup
	wg.Add(1)

	var mu sync.Mutex
	var got []SendJob
	err := q.Subscribe(SendTopic, func(payload any) error {
		defer wg.Done()
		job, ok := payload.(SendJob)
		if !ok {
			t.Errorf("unexpected payload type %T", payload)
			return nil
		}
		mu.Lock()
		got = append(got, job)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	job := SendJob{OwnerID: "owner-1", CampaignID: "camp-1", ContactID: "c1"}
	if err := q.Publish(SendTopic, job); err != nil {
		t.Fatal(err)
	}

	wg.Wait()
	if len(got) != 1 || got[0] != job {
		t.Errorf("expected [%+v], got %+v", job, got)
	}
}

func TestPublishWithoutSubscriberFails(t *testing.T) {
	q := newTestQueue()

	err := q.Publish(SendTopic, SendJob{ContactID: "c1"})
	if err == nil {
		t.Fatal("expected error for topic without subscribers")
	}
}

func TestFailedHandlerIsRetriedNotExhausted(t *testing.T) {
	q := newTestQueue()

	var mu sync.Mutex
	attempts := 0
	exhausted := 0
	done := make(chan struct{})
	err := q.Subscribe(SendTopic, func(payload any) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 1 {
			return errors.New("smtp timeout")
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	q.OnExhausted(SendTopic, func(payload any, err error) {
		mu.Lock()
		exhausted++
		mu.Unlock()
	})

	if err := q.Publish(SendTopic, SendJob{ContactID: "c1"}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not retried")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	// A transient failure must not reach the give-up path.
	if exhausted != 0 {
		t.Errorf("exhausted callback fired %d times for a recovered job", exhausted)
	}
}

func TestExhaustedCallbackFiresAfterAllAttempts(t *testing.T) {
	q := newTestQueue()
	q.MaxRetries = 2

	var mu sync.Mutex
	attempts := 0
	sendErr := errors.New("connection refused")
	if err := q.Subscribe(SendTopic, func(payload any) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return sendErr
	}); err != nil {
		t.Fatal(err)
	}

	type giveUp struct {
		payload any
		err     error
	}
	got := make(chan giveUp, 1)
	q.OnExhausted(SendTopic, func(payload any, err error) {
		got <- giveUp{payload, err}
	})

	job := SendJob{OwnerID: "owner-1", CampaignID: "camp-1", ContactID: "c1"}
	if err := q.Publish(SendTopic, job); err != nil {
		t.Fatal(err)
	}

	select {
	case g := <-got:
		if g.payload != job {
			t.Errorf("exhausted payload = %+v, want %+v", g.payload, job)
		}
		if !errors.Is(g.err, sendErr) {
			t.Errorf("exhausted err = %v, want %v", g.err, sendErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("exhausted callback never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", attempts)
	}
}

func TestRetryCountReadsHeader(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"nil table", nil, 0},
		{"absent header", amqp.Table{}, 0},
		{"int32", amqp.Table{"x-retry-count": int32(2)}, 2},
		{"int64", amqp.Table{"x-retry-count": int64(3)}, 3},
		{"int", amqp.Table{"x-retry-count": 1}, 1},
		{"wrong type", amqp.Table{"x-retry-count": "2"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RetryCount(tc.headers); got != tc.want {
				t.Errorf("RetryCount(%v) = %d, want %d", tc.headers, got, tc.want)
			}
		})
	}
}

func TestRetryPublishingRoundTrips(t *testing.T) {
	pub := NewRetryPublishing([]byte(`{"contact_id":"c1"}`), 1)

	if got := RetryCount(pub.Headers); got != 1 {
		t.Errorf("republished count = %d, want 1", got)
	}
	// The next failure must see a higher count than the last.
	pub = NewRetryPublishing(pub.Body, RetryCount(pub.Headers)+1)
	if got := RetryCount(pub.Headers); got != 2 {
		t.Errorf("second republish count = %d, want 2", got)
	}
}
