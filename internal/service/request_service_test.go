package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardline/request-service/internal/domain"
	"github.com/guardline/request-service/internal/events"
	"github.com/guardline/request-service/internal/repository"
	"github.com/guardline/request-service/internal/sequence"
	apperrors "github.com/guardline/request-service/pkg/util"
)

// fakeRequestRepo is an in-memory RequestRepository enforcing the human-id
// uniqueness constraint the way the database would.
type fakeRequestRepo struct {
	mu       sync.Mutex
	seq      int
	byID     map[string]*domain.Request
	failNext error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byID: make(map[string]*domain.Request)}
}

func (r *fakeRequestRepo) Create(_ context.Context, request *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	for _, existing := range r.byID {
		if existing.HumanID == request.HumanID {
			return apperrors.NewConflict("duplicate identifier", nil)
		}
	}
	r.seq++
	request.ID = fmt.Sprintf("id-%d", r.seq)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	clone := *request
	r.byID[request.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) Update(_ context.Context, request *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[request.ID]; !ok {
		return apperrors.NewNotFound("request", nil)
	}
	request.UpdatedAt = time.Now()
	clone := *request
	r.byID[request.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("request", nil)
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeRequestRepo) matches(request *domain.Request, filter repository.RequestFilter) bool {
	if request.Kind != filter.Kind {
		return false
	}
	if filter.OwnerID != nil && request.OwnerID != *filter.OwnerID {
		return false
	}
	if filter.UnviewedByAdmin && request.ViewedByAdmin {
		return false
	}
	return true
}

func (r *fakeRequestRepo) ListWithFilter(_ context.Context, filter repository.RequestFilter) ([]domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Request
	for _, request := range r.byID {
		if r.matches(request, filter) {
			matched = append(matched, *request)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.Offset >= len(matched) {
		return []domain.Request{}, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}

func (r *fakeRequestRepo) CountWithFilter(_ context.Context, filter repository.RequestFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, request := range r.byID {
		if r.matches(request, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return apperrors.NewNotFound("request", nil)
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeRequestRepo) MarkViewedByAdmin(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if request, ok := r.byID[id]; ok && request.Kind == domain.KindTicket {
			request.ViewedByAdmin = true
		}
	}
	return nil
}

func (r *fakeRequestRepo) LatestHumanID(_ context.Context, kind domain.RequestKind) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Request
	for _, request := range r.byID {
		if request.Kind != kind {
			continue
		}
		if latest == nil || request.CreatedAt.After(latest.CreatedAt) ||
			(request.CreatedAt.Equal(latest.CreatedAt) && request.HumanID > latest.HumanID) {
			latest = request
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.HumanID, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error { return nil }
func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error { return nil }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

var (
	adminActor = domain.Principal{ID: "admin", Role: domain.RoleAdmin, DisplayName: "Administrator"}
	ownerActor = domain.Principal{ID: "user-1", Role: domain.RoleCustomer, DisplayName: "Alice"}
	otherActor = domain.Principal{ID: "user-2", Role: domain.RoleCustomer, DisplayName: "Bob"}
)

func newTestService(t *testing.T) (*RequestService, *fakeRequestRepo, *capturingDispatcher) {
	t.Helper()
	repo := newFakeRequestRepo()
	users := &fakeUserRepo{users: map[string]*domain.User{
		"user-1": {
			ID:       "user-1",
			Name:     "Alice",
			Email:    "alice@example.com",
			Address:  "12 High Street",
			Location: domain.Location{Lat: 51.5, Lng: -0.12},
			Status:   domain.UserStatusActive,
		},
		"user-2": {
			ID:     "user-2",
			Name:   "Bob",
			Email:  "bob@example.com",
			Status: domain.UserStatusActive,
		},
	}}
	dispatcher := &capturingDispatcher{}
	svc := NewRequestService(RequestDependencies{
		RequestRepo: repo,
		UserRepo:    users,
		Allocator:   sequence.NewAllocator(repo),
		Dispatcher:  dispatcher,
	})
	return svc, repo, dispatcher
}

func serviceRequestInput() RequestCreateInput {
	return RequestCreateInput{
		Category:    "CCTV",
		Title:       "Camera offline",
		Description: "Front-door camera stopped recording",
		Location:    &domain.Location{Lat: 51.5, Lng: -0.12},
		Address:     "12 High Street",
		OutletName:  "HQ Outlet",
	}
}

func TestCreateServiceRequestDefaults(t *testing.T) {
	svc, _, dispatcher := newTestService(t)

	request, err := svc.Create(context.Background(), ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	assert.Equal(t, "SRV-000001", request.HumanID)
	assert.Equal(t, domain.StatusNew, request.Status)
	assert.Equal(t, "user-1", request.OwnerID)
	require.NotNil(t, request.OutletName)
	assert.Equal(t, "HQ Outlet", *request.OutletName)
	assert.Empty(t, request.Timeline)
	assert.NotNil(t, request.Attachments)

	created := dispatcher.byType(events.EventRequestCreated)
	require.Len(t, created, 1)
}

func TestCreateAllocatesSequentialIdentifiers(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.Create(context.Background(), ownerActor, domain.KindTicket, RequestCreateInput{
		Category: "CCTV", Title: "one", Description: "desc",
	})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), ownerActor, domain.KindTicket, RequestCreateInput{
		Category: "CCTV", Title: "two", Description: "desc",
	})
	require.NoError(t, err)

	assert.Equal(t, "TKT-000001", first.HumanID)
	assert.Equal(t, "TKT-000002", second.HumanID)
}

func TestCreateRetriesOnIdentifierConflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.failNext = apperrors.NewConflict("duplicate identifier", nil)

	request, err := svc.Create(context.Background(), ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)
	assert.Equal(t, "SRV-000001", request.HumanID)
}

func TestCreateTicketInheritsOwnerLocation(t *testing.T) {
	svc, _, _ := newTestService(t)

	ticket, err := svc.Create(context.Background(), ownerActor, domain.KindTicket, RequestCreateInput{
		Category:    "Fire Alarm",
		Title:       "Panel fault",
		Description: "Fire panel shows zone error",
	})
	require.NoError(t, err)
	assert.Equal(t, "12 High Street", ticket.Address)
	assert.Equal(t, 51.5, ticket.Location.Lat)
	assert.False(t, ticket.ViewedByAdmin)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ownerActor, domain.KindTicket, RequestCreateInput{Category: "CCTV", Title: " ", Description: "x"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Create(ctx, ownerActor, domain.KindTicket, RequestCreateInput{Category: "Plumbing", Title: "t", Description: "d"})
	assert.True(t, apperrors.IsValidation(err))

	input := serviceRequestInput()
	input.OutletName = ""
	_, err = svc.Create(ctx, ownerActor, domain.KindServiceRequest, input)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Create(ctx, adminActor, domain.KindTicket, RequestCreateInput{Category: "CCTV", Title: "t", Description: "d"})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestUpdateStatusDerivesCompletedAt(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)
	assert.Nil(t, request.CompletedAt)

	completed := domain.StatusCompleted
	request, err = svc.UpdateStatus(ctx, adminActor, request.ID, StatusUpdateInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, request.CompletedAt)

	updated := dispatcher.byType(events.EventRequestUpdated)
	require.Len(t, updated, 1)
	payload := updated[0].Payload.(events.RequestUpdatedPayload)
	assert.True(t, payload.StatusChanged)
	assert.Equal(t, domain.StatusCompleted, payload.NewStatus)
	assert.Equal(t, "user-1", payload.OwnerID)

	inProgress := domain.StatusInProgress
	request, err = svc.UpdateStatus(ctx, adminActor, request.ID, StatusUpdateInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Nil(t, request.CompletedAt)
}

func TestUpdateStatusBetweenNonCompletedLeavesCompletedAt(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	inProgress := domain.StatusInProgress
	request, err = svc.UpdateStatus(ctx, adminActor, request.ID, StatusUpdateInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Nil(t, request.CompletedAt)

	rejected := domain.StatusRejected
	request, err = svc.UpdateStatus(ctx, adminActor, request.ID, StatusUpdateInput{Status: &rejected})
	require.NoError(t, err)
	assert.Nil(t, request.CompletedAt)
}

func TestUpdateStatusNoopSkipsPersistAndEvents(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)
	before := request.UpdatedAt

	current := request.Status
	request, err = svc.UpdateStatus(ctx, adminActor, request.ID, StatusUpdateInput{Status: &current})
	require.NoError(t, err)
	assert.Equal(t, before, request.UpdatedAt)
	assert.Empty(t, dispatcher.byType(events.EventRequestUpdated))
}

func TestUpdateStatusRejectsForeignStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, ownerActor, domain.KindTicket, RequestCreateInput{
		Category: "CCTV", Title: "t", Description: "d",
	})
	require.NoError(t, err)

	// Completed belongs to service requests; tickets close instead.
	completed := domain.StatusCompleted
	_, err = svc.UpdateStatus(ctx, adminActor, ticket.ID, StatusUpdateInput{Status: &completed})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateStatusDeniedForCustomer(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	inProgress := domain.StatusInProgress
	_, err = svc.UpdateStatus(ctx, ownerActor, request.ID, StatusUpdateInput{Status: &inProgress})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestUpdateStatusAssignsVisit(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	visit := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	request, err = svc.UpdateStatus(ctx, adminActor, request.ID, StatusUpdateInput{AssignedVisitAt: &visit})
	require.NoError(t, err)
	require.NotNil(t, request.AssignedVisitAt)
	assert.True(t, visit.Equal(*request.AssignedVisitAt))

	// same instant again is a no-op
	dispatcherEvents := len(dispatcher.byType(events.EventRequestUpdated))
	_, err = svc.UpdateStatus(ctx, adminActor, request.ID, StatusUpdateInput{AssignedVisitAt: &visit})
	require.NoError(t, err)
	assert.Len(t, dispatcher.byType(events.EventRequestUpdated), dispatcherEvents)
}

func TestAddCommentByOwner(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	request, err = svc.AddComment(ctx, ownerActor, request.ID, CommentInput{Note: "any update?"})
	require.NoError(t, err)
	require.Len(t, request.Timeline, 1)
	assert.Equal(t, "Alice", request.Timeline[0].AddedBy)
	// owner comments do not notify anyone
	assert.Empty(t, dispatcher.byType(events.EventCommentAdded))
}

func TestAddCommentByAdminNotifiesOwner(t *testing.T) {
	svc, _, dispatcher := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	request, err = svc.AddComment(ctx, adminActor, request.ID, CommentInput{
		Note: "Engineer assigned",
		PriceList: []domain.PriceLine{
			{SequenceNo: 1, Description: "Replacement camera", Price: 120},
		},
		TotalPrice: 120,
	})
	require.NoError(t, err)
	require.Len(t, request.Timeline, 1)
	assert.Equal(t, 120.0, request.Timeline[0].TotalPrice)

	comments := dispatcher.byType(events.EventCommentAdded)
	require.Len(t, comments, 1)
	payload := comments[0].Payload.(events.CommentAddedPayload)
	assert.Equal(t, "user-1", payload.OwnerID)
	assert.Equal(t, "Engineer assigned", payload.Note)
}

func TestAddCommentEmptyNoteRejectedBeforeMutation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, ownerActor, request.ID, CommentInput{Note: "  "})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	stored, err := repo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Timeline)
}

func TestAddCommentPriceListRejectedOnTickets(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, ownerActor, domain.KindTicket, RequestCreateInput{
		Category: "CCTV", Title: "t", Description: "d",
	})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, adminActor, ticket.ID, CommentInput{
		Note:      "quote",
		PriceList: []domain.PriceLine{{SequenceNo: 1, Description: "x", Price: 1}},
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestNonOwnerForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, otherActor, request.ID)
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.AddComment(ctx, otherActor, request.ID, CommentInput{Note: "hi"})
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.MarkSeen(ctx, otherActor, request.ID, 0)
	assert.True(t, apperrors.IsForbidden(err))

	err = svc.Delete(ctx, otherActor, request.ID)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestMarkSeenIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)
	request, err = svc.AddComment(ctx, adminActor, request.ID, CommentInput{Note: "update"})
	require.NoError(t, err)

	request, err = svc.MarkSeen(ctx, ownerActor, request.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, request.Timeline[0].SeenBy)

	request, err = svc.MarkSeen(ctx, ownerActor, request.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, request.Timeline[0].SeenBy)

	_, err = svc.MarkSeen(ctx, ownerActor, request.ID, 5)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteRemovesPermanently(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	request, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ownerActor, request.ID))
	_, err = repo.GetByID(ctx, request.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMarkViewedBulkIgnoresUnknownIDs(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, ownerActor, domain.KindTicket, RequestCreateInput{
		Category: "CCTV", Title: "a", Description: "d",
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, ownerActor, domain.KindTicket, RequestCreateInput{
		Category: "CCTV", Title: "b", Description: "d",
	})
	require.NoError(t, err)

	err = svc.MarkViewed(ctx, adminActor, []string{first.ID, second.ID, "no-such-id"})
	require.NoError(t, err)

	for _, id := range []string{first.ID, second.ID} {
		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, stored.ViewedByAdmin)
	}

	err = svc.MarkViewed(ctx, ownerActor, []string{first.ID})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestListOwnerScopedAndPaginated(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	input := serviceRequestInput()
	_, err := svc.Create(ctx, otherActor, domain.KindServiceRequest, input)
	require.NoError(t, err)

	page, err := svc.List(ctx, ownerActor, domain.KindServiceRequest, ListParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Pages)
	assert.True(t, page.HasMore)
	// newest first
	assert.True(t, !page.Items[0].CreatedAt.Before(page.Items[1].CreatedAt))

	page, err = svc.List(ctx, ownerActor, domain.KindServiceRequest, ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	// admins see everything
	page, err = svc.List(ctx, adminActor, domain.KindServiceRequest, ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
}

func TestListAdminTicketsDefaultsToUnviewed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, ownerActor, domain.KindTicket, RequestCreateInput{
		Category: "CCTV", Title: "a", Description: "d",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ownerActor, domain.KindTicket, RequestCreateInput{
		Category: "CCTV", Title: "b", Description: "d",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkViewed(ctx, adminActor, []string{first.ID}))

	page, err := svc.List(ctx, adminActor, domain.KindTicket, ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = svc.List(ctx, adminActor, domain.KindTicket, ListParams{Page: 1, PageSize: 10, ShowAll: true})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestConcurrentCreationsYieldDistinctHumanIDs(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, ownerActor, domain.KindServiceRequest, serviceRequestInput())
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	created := 0
	repo.mu.Lock()
	for _, request := range repo.byID {
		require.False(t, seen[request.HumanID], "duplicate human id %s", request.HumanID)
		seen[request.HumanID] = true
		created++
	}
	repo.mu.Unlock()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, succeeded, created)
}
