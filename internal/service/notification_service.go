package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/guardline/request-service/internal/domain"
	"github.com/guardline/request-service/internal/events"
	"github.com/guardline/request-service/internal/worker"
)

// IntentQueue is the handoff point between event handlers and asynchronous
// delivery. *worker.NotificationWorker satisfies it.
type IntentQueue interface {
	Enqueue(intent worker.Intent)
}

// NotificationService turns lifecycle events into notification intents
// addressed to the request owner.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      IntentQueue
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, queue IntentQueue, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleRequestCreated)
	n.dispatcher.Subscribe(events.EventRequestUpdated, n.handleRequestUpdated)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

// handleRequestCreated only logs; creation produces no customer-facing
// intent, the creator already knows.
func (n *NotificationService) handleRequestCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("request created",
		zap.String("request_id", event.RequestID),
		zap.String("human_id", payload.HumanID),
		zap.String("category", payload.Category))
	return nil
}

func (n *NotificationService) handleRequestUpdated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestUpdatedPayload)
	if !ok {
		return nil
	}
	variant, ok := domain.VariantFor(payload.Kind)
	if !ok {
		return nil
	}

	var body string
	switch {
	case payload.StatusChanged && payload.NewStatus == variant.CompletedStatus:
		body = fmt.Sprintf("Your %s %s has been %s.", variant.Noun, payload.HumanID, terminalWording(payload.NewStatus))
	case payload.StatusChanged && payload.NewStatus == domain.StatusRejected:
		body = fmt.Sprintf("Your %s %s has been rejected.", variant.Noun, payload.HumanID)
	case payload.StatusChanged:
		body = fmt.Sprintf("Status of your %s %s has been updated to %s.", variant.Noun, payload.HumanID, payload.NewStatus)
	case payload.VisitAssigned != nil:
		body = fmt.Sprintf("A visit for your %s %s has been scheduled for %s.",
			variant.Noun, payload.HumanID, payload.VisitAssigned.Format("02 Jan 2006 15:04"))
	default:
		return nil
	}
	if payload.StatusChanged && payload.VisitAssigned != nil {
		body += fmt.Sprintf(" A visit is scheduled for %s.", payload.VisitAssigned.Format("02 Jan 2006 15:04"))
	}

	n.queue.Enqueue(worker.Intent{
		Recipient:       payload.OwnerID,
		Subject:         fmt.Sprintf("Update on %s", payload.HumanID),
		Body:            body,
		RelatedEntityID: event.RequestID,
	})
	return nil
}

func (n *NotificationService) handleCommentAdded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return nil
	}
	body := payload.Note
	if payload.AssignedVisitAt != nil {
		body += fmt.Sprintf("\nScheduled visit: %s", payload.AssignedVisitAt.Format("02 Jan 2006 15:04"))
	}
	n.queue.Enqueue(worker.Intent{
		Recipient:       payload.OwnerID,
		Subject:         fmt.Sprintf("New update on %s", payload.HumanID),
		Body:            body,
		RelatedEntityID: event.RequestID,
	})
	return nil
}

func terminalWording(status domain.RequestStatus) string {
	switch status {
	case domain.StatusClosed:
		return "closed"
	default:
		return "completed"
	}
}
