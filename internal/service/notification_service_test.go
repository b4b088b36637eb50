package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/guardline/request-service/internal/domain"
	"github.com/guardline/request-service/internal/events"
	"github.com/guardline/request-service/internal/worker"
)

type capturingQueue struct {
	intents []worker.Intent
}

func (q *capturingQueue) Enqueue(intent worker.Intent) {
	q.intents = append(q.intents, intent)
}

func newNotificationFixture() (*NotificationService, *capturingQueue, events.Dispatcher) {
	queue := &capturingQueue{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, queue, zap.NewNop())
	svc.RegisterHandlers()
	return svc, queue, dispatcher
}

func publishUpdated(t *testing.T, dispatcher events.Dispatcher, payload events.RequestUpdatedPayload) {
	t.Helper()
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventRequestUpdated,
		RequestID: "req-1",
		Payload:   payload,
	})
	require.NoError(t, err)
}

func TestCompletedServiceRequestIntent(t *testing.T) {
	_, queue, dispatcher := newNotificationFixture()

	publishUpdated(t, dispatcher, events.RequestUpdatedPayload{
		Kind:          domain.KindServiceRequest,
		HumanID:       "SRV-000042",
		OwnerID:       "user-1",
		StatusChanged: true,
		OldStatus:     domain.StatusInProgress,
		NewStatus:     domain.StatusCompleted,
	})

	require.Len(t, queue.intents, 1)
	intent := queue.intents[0]
	assert.Equal(t, "user-1", intent.Recipient)
	assert.Equal(t, "Update on SRV-000042", intent.Subject)
	assert.Contains(t, intent.Body, "completed")
	assert.Contains(t, intent.Body, "SRV-000042")
	assert.Equal(t, "req-1", intent.RelatedEntityID)
}

func TestClosedTicketIntent(t *testing.T) {
	_, queue, dispatcher := newNotificationFixture()

	publishUpdated(t, dispatcher, events.RequestUpdatedPayload{
		Kind:          domain.KindTicket,
		HumanID:       "TKT-000007",
		OwnerID:       "user-9",
		StatusChanged: true,
		OldStatus:     domain.StatusInProgress,
		NewStatus:     domain.StatusClosed,
	})

	require.Len(t, queue.intents, 1)
	assert.Contains(t, queue.intents[0].Body, "closed")
	assert.NotContains(t, queue.intents[0].Body, "completed")
}

func TestRejectedIntent(t *testing.T) {
	_, queue, dispatcher := newNotificationFixture()

	publishUpdated(t, dispatcher, events.RequestUpdatedPayload{
		Kind:          domain.KindServiceRequest,
		HumanID:       "SRV-000003",
		OwnerID:       "user-2",
		StatusChanged: true,
		OldStatus:     domain.StatusNew,
		NewStatus:     domain.StatusRejected,
	})

	require.Len(t, queue.intents, 1)
	assert.Contains(t, queue.intents[0].Body, "rejected")
}

func TestIntermediateStatusIntent(t *testing.T) {
	_, queue, dispatcher := newNotificationFixture()

	publishUpdated(t, dispatcher, events.RequestUpdatedPayload{
		Kind:          domain.KindTicket,
		HumanID:       "TKT-000001",
		OwnerID:       "user-1",
		StatusChanged: true,
		OldStatus:     domain.StatusNew,
		NewStatus:     domain.StatusInProgress,
	})

	require.Len(t, queue.intents, 1)
	assert.Contains(t, queue.intents[0].Body, "updated to InProgress")
}

func TestVisitOnlyIntent(t *testing.T) {
	_, queue, dispatcher := newNotificationFixture()

	visit := time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)
	publishUpdated(t, dispatcher, events.RequestUpdatedPayload{
		Kind:          domain.KindServiceRequest,
		HumanID:       "SRV-000010",
		OwnerID:       "user-1",
		StatusChanged: false,
		OldStatus:     domain.StatusInProgress,
		NewStatus:     domain.StatusInProgress,
		VisitAssigned: &visit,
	})

	require.Len(t, queue.intents, 1)
	assert.Contains(t, queue.intents[0].Body, "scheduled for 14 Sep 2026 10:30")
}

func TestStatusAndVisitCombined(t *testing.T) {
	_, queue, dispatcher := newNotificationFixture()

	visit := time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)
	publishUpdated(t, dispatcher, events.RequestUpdatedPayload{
		Kind:          domain.KindServiceRequest,
		HumanID:       "SRV-000011",
		OwnerID:       "user-1",
		StatusChanged: true,
		OldStatus:     domain.StatusNew,
		NewStatus:     domain.StatusInProgress,
		VisitAssigned: &visit,
	})

	require.Len(t, queue.intents, 1)
	body := queue.intents[0].Body
	assert.Contains(t, body, "updated to InProgress")
	assert.Contains(t, body, "14 Sep 2026 10:30")
}

func TestCommentIntentCarriesNoteAndVisit(t *testing.T) {
	_, queue, dispatcher := newNotificationFixture()

	visit := time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC)
	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventCommentAdded,
		RequestID: "req-2",
		Payload: events.CommentAddedPayload{
			Kind:            domain.KindServiceRequest,
			HumanID:         "SRV-000005",
			OwnerID:         "user-3",
			AuthorName:      "Administrator",
			Note:            "Engineer will bring a replacement unit.",
			AssignedVisitAt: &visit,
		},
	})
	require.NoError(t, err)

	require.Len(t, queue.intents, 1)
	intent := queue.intents[0]
	assert.Equal(t, "user-3", intent.Recipient)
	assert.Equal(t, "New update on SRV-000005", intent.Subject)
	assert.Contains(t, intent.Body, "Engineer will bring a replacement unit.")
	assert.Contains(t, intent.Body, "Scheduled visit: 20 Sep 2026 09:00")
}

func TestCreatedEventProducesNoIntent(t *testing.T) {
	_, queue, dispatcher := newNotificationFixture()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventRequestCreated,
		RequestID: "req-3",
		Payload: events.RequestCreatedPayload{
			Kind:    domain.KindTicket,
			HumanID: "TKT-000001",
			OwnerID: "user-1",
		},
	})
	require.NoError(t, err)
	assert.Empty(t, queue.intents)
}
