// Package worker decouples notification delivery from the request/response
// path. Lifecycle operations enqueue intents; a background goroutine drains
// the queue and hands intents to the configured senders. Delivery failures
// are logged and dropped, never propagated.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Intent is a description of a message to send, decoupled from delivery.
type Intent struct {
	Recipient       string
	Subject         string
	Body            string
	RelatedEntityID string
}

// Sender delivers a single intent over one channel (email, webhook, ...).
type Sender interface {
	Send(ctx context.Context, intent Intent) error
}

// NotificationWorker drains a buffered intent queue asynchronously.
type NotificationWorker struct {
	queue   chan Intent
	senders []Sender
	logger  *zap.Logger
	wg      sync.WaitGroup
	once    sync.Once
}

// NewNotificationWorker constructs the worker with the given queue capacity.
func NewNotificationWorker(logger *zap.Logger, buffer int, senders ...Sender) *NotificationWorker {
	if buffer <= 0 {
		buffer = 256
	}
	return &NotificationWorker{
		queue:   make(chan Intent, buffer),
		senders: senders,
		logger:  logger,
	}
}

// Start launches the drain goroutine. Delivery uses its own background
// context so an expired request context cannot cancel it mid-send.
func (w *NotificationWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for intent := range w.queue {
			w.deliver(context.Background(), intent)
		}
	}()
}

// Enqueue hands an intent to the worker without blocking. When the queue is
// full the intent is dropped with a log line; the caller's operation has
// already succeeded at that point.
func (w *NotificationWorker) Enqueue(intent Intent) {
	select {
	case w.queue <- intent:
	default:
		w.logger.Warn("notification queue full, dropping intent",
			zap.String("recipient", intent.Recipient),
			zap.String("related_entity_id", intent.RelatedEntityID))
	}
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (w *NotificationWorker) Stop() {
	w.once.Do(func() {
		close(w.queue)
	})
	w.wg.Wait()
}

func (w *NotificationWorker) deliver(ctx context.Context, intent Intent) {
	for _, sender := range w.senders {
		if err := sender.Send(ctx, intent); err != nil {
			w.logger.Warn("notification delivery failed",
				zap.String("recipient", intent.Recipient),
				zap.String("related_entity_id", intent.RelatedEntityID),
				zap.Error(err))
		}
	}
}
