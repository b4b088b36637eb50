package events

import (
	"time"

	"github.com/guardline/request-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated EventType = "request_created"
	EventRequestUpdated EventType = "request_updated"
	EventCommentAdded   EventType = "request_comment_added"
	EventRequestDeleted EventType = "request_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by the request lifecycle.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Kind     domain.RequestKind `json:"kind"`
	HumanID  string             `json:"human_id"`
	OwnerID  string             `json:"owner_id"`
	Category string             `json:"category"`
	Title    string             `json:"title"`
}

// RequestUpdatedPayload describes a status and/or visit change. OldStatus and
// NewStatus are equal when only the visit changed.
type RequestUpdatedPayload struct {
	Kind          domain.RequestKind   `json:"kind"`
	HumanID       string               `json:"human_id"`
	OwnerID       string               `json:"owner_id"`
	StatusChanged bool                 `json:"status_changed"`
	OldStatus     domain.RequestStatus `json:"old_status"`
	NewStatus     domain.RequestStatus `json:"new_status"`
	VisitAssigned *time.Time           `json:"visit_assigned,omitempty"`
}

// CommentAddedPayload payload. AssignedVisitAt is the request's current
// scheduled visit at the moment the comment landed.
type CommentAddedPayload struct {
	Kind            domain.RequestKind `json:"kind"`
	HumanID         string             `json:"human_id"`
	OwnerID         string             `json:"owner_id"`
	AuthorName      string             `json:"author_name"`
	Note            string             `json:"note"`
	AssignedVisitAt *time.Time         `json:"assigned_visit_at,omitempty"`
}

// RequestDeletedPayload payload.
type RequestDeletedPayload struct {
	Kind    domain.RequestKind `json:"kind"`
	HumanID string             `json:"human_id"`
	OwnerID string             `json:"owner_id"`
}
