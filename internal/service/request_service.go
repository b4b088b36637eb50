package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guardline/request-service/internal/cache"
	"github.com/guardline/request-service/internal/domain"
	"github.com/guardline/request-service/internal/events"
	"github.com/guardline/request-service/internal/policy"
	"github.com/guardline/request-service/internal/repository"
	"github.com/guardline/request-service/internal/sequence"
	"github.com/guardline/request-service/internal/timeline"
	apperrors "github.com/guardline/request-service/pkg/util"
)

// allocationAttempts bounds the retry loop on human-id conflicts before the
// failure surfaces as Unavailable.
const allocationAttempts = 5

// RequestService coordinates the request lifecycle for both variants.
type RequestService struct {
	requests   repository.RequestRepository
	users      repository.UserRepository
	allocator  *sequence.Allocator
	dispatcher events.Dispatcher
	tickets    *cache.TicketCache
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	UserRepo    repository.UserRepository
	Allocator   *sequence.Allocator
	Dispatcher  events.Dispatcher
	TicketCache *cache.TicketCache
}

// RequestCreateInput describes request creation payload. Location, Address
// and OutletName are only read for service requests; tickets inherit
// location and address from the owner's profile.
type RequestCreateInput struct {
	Category         string
	Title            string
	Description      string
	Attachments      []string
	PreferredVisitAt *time.Time
	Location         *domain.Location
	Address          string
	OutletName       string
}

// StatusUpdateInput carries the optional fields of a status transition.
type StatusUpdateInput struct {
	Status          *domain.RequestStatus
	AssignedVisitAt *time.Time
}

// CommentInput carries a new timeline entry. PriceList and TotalPrice are
// valid for service requests only.
type CommentInput struct {
	Note        string
	Attachments []string
	PriceList   []domain.PriceLine
	TotalPrice  float64
}

// ListParams captures pagination for listings. ShowAll lets an admin include
// tickets already marked as viewed.
type ListParams struct {
	Page     int
	PageSize int
	ShowAll  bool
}

// RequestPage is a paginated listing result.
type RequestPage struct {
	Items   []domain.Request
	Total   int
	Page    int
	Pages   int
	HasMore bool
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		users:      deps.UserRepo,
		allocator:  deps.Allocator,
		dispatcher: deps.Dispatcher,
		tickets:    deps.TicketCache,
	}
}

// Create registers a new request for the acting customer. The human id is
// allocated immediately before insert; a uniqueness conflict on the insert
// triggers reallocation with a freshly computed value.
func (s *RequestService) Create(ctx context.Context, actor domain.Principal, kind domain.RequestKind, input RequestCreateInput) (*domain.Request, error) {
	if actor.IsAdmin() {
		return nil, apperrors.NewForbidden("requests are submitted by outlet customers")
	}

	variant, ok := domain.VariantFor(kind)
	if !ok {
		return nil, apperrors.NewValidationError("unknown request kind", map[string]any{"kind": kind})
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}
	if !variant.AllowsCategory(input.Category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}

	attachments := input.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	request := &domain.Request{
		Kind:             kind,
		OwnerID:          actor.ID,
		Category:         input.Category,
		Title:            title,
		Description:      description,
		Attachments:      attachments,
		Status:           domain.StatusNew,
		PreferredVisitAt: input.PreferredVisitAt,
		Timeline:         []domain.TimelineEntry{},
	}

	switch kind {
	case domain.KindTicket:
		owner, err := s.users.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		request.Location = owner.Location
		request.Address = owner.Address
	case domain.KindServiceRequest:
		if input.Location == nil || strings.TrimSpace(input.Address) == "" {
			return nil, apperrors.NewValidationError("location and address are required", nil)
		}
		outlet := strings.TrimSpace(input.OutletName)
		if outlet == "" {
			return nil, apperrors.NewValidationError("outlet name is required", nil)
		}
		request.Location = *input.Location
		request.Address = strings.TrimSpace(input.Address)
		request.OutletName = &outlet
	}

	if err := s.createWithAllocation(ctx, variant, request); err != nil {
		return nil, err
	}

	if kind == domain.KindTicket {
		s.tickets.InvalidateUnviewedCount(ctx)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		Actor:     eventActor(actor),
		Payload: events.RequestCreatedPayload{
			Kind:     request.Kind,
			HumanID:  request.HumanID,
			OwnerID:  request.OwnerID,
			Category: request.Category,
			Title:    request.Title,
		},
	})
	return request, nil
}

func (s *RequestService) createWithAllocation(ctx context.Context, variant domain.Variant, request *domain.Request) error {
	var lastErr error
	for attempt := 0; attempt < allocationAttempts; attempt++ {
		humanID, err := s.allocator.Next(ctx, variant)
		if err != nil {
			return err
		}
		request.HumanID = humanID

		err = s.requests.Create(ctx, request)
		if err == nil {
			return nil
		}
		if !apperrors.IsConflict(err) {
			return err
		}
		lastErr = err
	}
	return apperrors.NewUnavailable("could not allocate a unique identifier", lastErr)
}

// Get returns a request the actor is permitted to read.
func (s *RequestService) Get(ctx context.Context, actor domain.Principal, id string) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, request, policy.ActionRead) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return request, nil
}

// List returns a page of requests, newest first. Customers see only their
// own. Admins see everything, except that ticket listings default to the
// not-yet-viewed subset unless ShowAll is set.
func (s *RequestService) List(ctx context.Context, actor domain.Principal, kind domain.RequestKind, params ListParams) (*RequestPage, error) {
	if _, ok := domain.VariantFor(kind); !ok {
		return nil, apperrors.NewValidationError("unknown request kind", map[string]any{"kind": kind})
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := repository.RequestFilter{
		Kind:   kind,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if !actor.IsAdmin() {
		ownerID := actor.ID
		filter.OwnerID = &ownerID
	} else if kind == domain.KindTicket && !params.ShowAll {
		filter.UnviewedByAdmin = true
	}

	total, err := s.requests.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.requests.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Request{}
	}

	pages := 0
	if total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return &RequestPage{
		Items:   items,
		Total:   total,
		Page:    page,
		Pages:   pages,
		HasMore: page < pages,
	}, nil
}

// UpdateStatus applies an admin status transition and/or visit assignment.
// When neither field actually changes the request is returned untouched and
// nothing is persisted.
func (s *RequestService) UpdateStatus(ctx context.Context, actor domain.Principal, id string, input StatusUpdateInput) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, request, policy.ActionUpdateStatus) {
		return nil, apperrors.NewForbidden("only administrators can update status")
	}

	variant, _ := domain.VariantFor(request.Kind)

	oldStatus := request.Status
	statusChanged := false
	if input.Status != nil && *input.Status != request.Status {
		if !variant.AllowsStatus(*input.Status) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		newStatus := *input.Status
		if newStatus == variant.CompletedStatus && oldStatus != variant.CompletedStatus {
			now := time.Now()
			request.CompletedAt = &now
		} else if oldStatus == variant.CompletedStatus && newStatus != variant.CompletedStatus {
			request.CompletedAt = nil
		}
		request.Status = newStatus
		statusChanged = true
	}

	visitChanged := false
	if input.AssignedVisitAt != nil {
		if request.AssignedVisitAt == nil || !request.AssignedVisitAt.Equal(*input.AssignedVisitAt) {
			visit := *input.AssignedVisitAt
			request.AssignedVisitAt = &visit
			visitChanged = true
		}
	}

	if !statusChanged && !visitChanged {
		return request, nil
	}

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	payload := events.RequestUpdatedPayload{
		Kind:          request.Kind,
		HumanID:       request.HumanID,
		OwnerID:       request.OwnerID,
		StatusChanged: statusChanged,
		OldStatus:     oldStatus,
		NewStatus:     request.Status,
	}
	if visitChanged {
		payload.VisitAssigned = request.AssignedVisitAt
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestUpdated,
		RequestID: request.ID,
		Actor:     eventActor(actor),
		Payload:   payload,
	})
	return request, nil
}

// AddComment appends a timeline entry authored by the actor. Admin comments
// notify the owner.
func (s *RequestService) AddComment(ctx context.Context, actor domain.Principal, id string, input CommentInput) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, request, policy.ActionAddComment) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if request.Kind != domain.KindServiceRequest && (len(input.PriceList) > 0 || input.TotalPrice != 0) {
		return nil, apperrors.NewValidationError("price lines apply to service requests only", nil)
	}

	entry, err := timeline.Append(request, timeline.AppendInput{
		Note:        input.Note,
		Attachments: input.Attachments,
		PriceList:   input.PriceList,
		TotalPrice:  input.TotalPrice,
	}, actor, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventCommentAdded,
			RequestID: request.ID,
			Actor:     eventActor(actor),
			Payload: events.CommentAddedPayload{
				Kind:            request.Kind,
				HumanID:         request.HumanID,
				OwnerID:         request.OwnerID,
				AuthorName:      entry.AddedBy,
				Note:            entry.Note,
				AssignedVisitAt: request.AssignedVisitAt,
			},
		})
	}
	return request, nil
}

// MarkSeen records the actor's acknowledgement of a timeline entry. Repeat
// acknowledgements are no-ops and skip the write.
func (s *RequestService) MarkSeen(ctx context.Context, actor domain.Principal, id string, entryIndex int) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, request, policy.ActionMarkSeen) {
		return nil, apperrors.NewForbidden("access denied")
	}

	changed, err := timeline.MarkSeen(request, entryIndex, actor.ID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return request, nil
	}
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Delete removes a request permanently. No notification intent is emitted.
func (s *RequestService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanAccess(actor, request, policy.ActionDelete) {
		return apperrors.NewForbidden("access denied")
	}
	if err := s.requests.Delete(ctx, request.ID); err != nil {
		return err
	}
	if request.Kind == domain.KindTicket {
		s.tickets.InvalidateUnviewedCount(ctx)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestDeleted,
		RequestID: request.ID,
		Actor:     eventActor(actor),
		Payload: events.RequestDeletedPayload{
			Kind:    request.Kind,
			HumanID: request.HumanID,
			OwnerID: request.OwnerID,
		},
	})
	return nil
}

// MarkViewed flags a batch of tickets as seen by the admin side. Unknown ids
// are silently skipped.
func (s *RequestService) MarkViewed(ctx context.Context, actor domain.Principal, ticketIDs []string) error {
	if !policy.CanAccess(actor, nil, policy.ActionMarkViewedBulk) {
		return apperrors.NewForbidden("only administrators can mark tickets viewed")
	}
	if len(ticketIDs) == 0 {
		return nil
	}
	if err := s.requests.MarkViewedByAdmin(ctx, ticketIDs); err != nil {
		return err
	}
	s.tickets.InvalidateUnviewedCount(ctx)
	return nil
}

// UnviewedTicketCount returns how many tickets the admin side has not yet
// marked viewed, served from cache when warm.
func (s *RequestService) UnviewedTicketCount(ctx context.Context, actor domain.Principal) (int, error) {
	if !actor.IsAdmin() {
		return 0, apperrors.NewForbidden("administrators only")
	}
	if count, ok := s.tickets.UnviewedCount(ctx); ok {
		return count, nil
	}
	count, err := s.requests.CountWithFilter(ctx, repository.RequestFilter{
		Kind:            domain.KindTicket,
		UnviewedByAdmin: true,
	})
	if err != nil {
		return 0, err
	}
	s.tickets.SetUnviewedCount(ctx, count)
	return count, nil
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor domain.Principal) events.Actor {
	return events.Actor{ID: actor.ID, Role: actor.Role}
}
