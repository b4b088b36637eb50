package dto

import (
	"time"

	"github.com/guardline/request-service/internal/domain"
)

// CreateTicketRequest payload. Location and address are inherited from the
// customer's profile, not supplied here.
type CreateTicketRequest struct {
	Category         string     `json:"category"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Attachments      []string   `json:"attachments"`
	PreferredVisitAt *time.Time `json:"preferred_visit_at"`
}

// CreateServiceRequestRequest payload.
type CreateServiceRequestRequest struct {
	Category         string          `json:"category"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Attachments      []string        `json:"attachments"`
	PreferredVisitAt *time.Time      `json:"preferred_visit_at"`
	Location         domain.Location `json:"location"`
	Address          string          `json:"address"`
	OutletName       string          `json:"outlet_name"`
}

// UpdateStatusRequest payload for admin transitions.
type UpdateStatusRequest struct {
	Status          *string    `json:"status"`
	AssignedVisitAt *time.Time `json:"assigned_visit_at"`
}

// PriceLineRequest describes one priced line item.
type PriceLineRequest struct {
	SequenceNo  int     `json:"sequence_no"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Note        string             `json:"note"`
	Attachments []string           `json:"attachments"`
	PriceList   []PriceLineRequest `json:"price_list"`
	TotalPrice  float64            `json:"total_price"`
}

// MarkViewedRequest payload for the admin bulk action.
type MarkViewedRequest struct {
	TicketIDs []string `json:"ticket_ids"`
}

// PriceLineResponse mirrors a stored price line.
type PriceLineResponse struct {
	SequenceNo  int     `json:"sequence_no"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// TimelineEntryResponse represents one timeline entry.
type TimelineEntryResponse struct {
	ID          string              `json:"id"`
	Note        string              `json:"note"`
	Attachments []string            `json:"attachments"`
	AddedBy     string              `json:"added_by"`
	AddedAt     time.Time           `json:"added_at"`
	SeenBy      []string            `json:"seen_by"`
	PriceList   []PriceLineResponse `json:"price_list,omitempty"`
	TotalPrice  float64             `json:"total_price,omitempty"`
}

// RequestSummary is the listing shape.
type RequestSummary struct {
	ID              string               `json:"id"`
	HumanID         string               `json:"human_id"`
	Category        string               `json:"category"`
	Title           string               `json:"title"`
	Status          domain.RequestStatus `json:"status"`
	ViewedByAdmin   *bool                `json:"viewed_by_admin,omitempty"`
	AssignedVisitAt *time.Time           `json:"assigned_visit_at"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// RequestDetail provides the full request including timeline.
type RequestDetail struct {
	ID               string                  `json:"id"`
	HumanID          string                  `json:"human_id"`
	OwnerID          string                  `json:"owner_id"`
	Category         string                  `json:"category"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Attachments      []string                `json:"attachments"`
	Status           domain.RequestStatus    `json:"status"`
	PreferredVisitAt *time.Time              `json:"preferred_visit_at"`
	AssignedVisitAt  *time.Time              `json:"assigned_visit_at"`
	CompletedAt      *time.Time              `json:"completed_at"`
	Location         domain.Location         `json:"location"`
	Address          string                  `json:"address"`
	OutletName       *string                 `json:"outlet_name,omitempty"`
	ViewedByAdmin    *bool                   `json:"viewed_by_admin,omitempty"`
	Timeline         []TimelineEntryResponse `json:"timeline"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// PageResponse is the pagination envelope.
type PageResponse struct {
	Items   []RequestSummary `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	Pages   int              `json:"pages"`
	HasMore bool             `json:"hasMore"`
}
