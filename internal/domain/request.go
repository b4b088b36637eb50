package domain

import "time"

// RequestKind distinguishes the two request variants.
type RequestKind string

const (
	KindTicket         RequestKind = "ticket"
	KindServiceRequest RequestKind = "service_request"
)

// RequestStatus enumerates lifecycle states. The raw string values are the
// wire-visible status names.
type RequestStatus string

const (
	StatusNew        RequestStatus = "New"
	StatusInProgress RequestStatus = "InProgress"
	StatusCompleted  RequestStatus = "Completed"
	StatusRejected   RequestStatus = "Rejected"
	StatusClosed     RequestStatus = "Closed"
)

// Location is a geographic point for the outlet raising the request.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Request is the aggregate for customer-submitted tickets and service
// requests. It owns its timeline: entries are appended in place and persisted
// with the request, never separately.
type Request struct {
	ID               string
	Kind             RequestKind
	HumanID          string
	OwnerID          string
	Category         string
	Title            string
	Description      string
	Attachments      []string
	Status           RequestStatus
	PreferredVisitAt *time.Time
	AssignedVisitAt  *time.Time
	CompletedAt      *time.Time
	Location         Location
	Address          string
	OutletName       *string
	ViewedByAdmin    bool
	Timeline         []TimelineEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
