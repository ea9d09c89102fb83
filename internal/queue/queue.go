package queue

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Publisher is the half the campaign coordinator needs.
type Publisher interface {
	Publish(topic string, payload any) error
}

// Queue adds subscription for in-process consumers.
type Queue interface {
	Publisher
	Subscribe(topic string, handler func(payload any) error) error
}

// SendTopic is the topic campaign sends are published on. The AMQP publisher
// routes by its declared queue name instead; this only matters in-process.
const SendTopic = "delivery_sends"

// SendJob is the unit of work handed to the sending side: one recipient of
// one campaign.
type SendJob struct {
	OwnerID    string `json:"owner_id"`
	CampaignID string `json:"campaign_id"`
	ContactID  string `json:"contact_id"`
}

// InMemoryQueue is an in-process queue with retry, used for local runs and
// tests in place of the AMQP broker. A handler error triggers redelivery
// with backoff; OnExhausted callbacks fire once the retries are spent.
type InMemoryQueue struct {
	mu        sync.Mutex
	handlers  map[string][]func(payload any) error
	exhausted map[string][]func(payload any, err error)

	// Redelivery tuning. Tests shrink Backoff.
	MaxRetries int
	Backoff    time.Duration
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		exhausted:  make(map[string][]func(payload any, err error)),
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
	}
}

// jobEnvelope wraps a payload with retry info
type jobEnvelope struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := jobEnvelope{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: q.MaxRetries,
	}

	for _, handler := range handlers {
		go q.processJob(topic, handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(topic string, handler func(payload any) error, job jobEnvelope) {
	for {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries+1, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.RetryCount, job.Payload)
			q.giveUp(topic, job.Payload, err)
			return // No requeue
		}

		// Backoff before retry, growing per attempt
		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

func (q *InMemoryQueue) giveUp(topic string, payload any, err error) {
	q.mu.Lock()
	fns := q.exhausted[topic]
	q.mu.Unlock()
	for _, fn := range fns {
		fn(payload, err)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// OnExhausted registers a callback for jobs that failed every attempt. It
// receives the payload and the last handler error.
func (q *InMemoryQueue) OnExhausted(topic string, fn func(payload any, err error)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.exhausted[topic] = append(q.exhausted[topic], fn)
}

var _ Queue = (*InMemoryQueue)(nil)
