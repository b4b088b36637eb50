package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guardline/request-service/internal/domain"
	apperrors "github.com/guardline/request-service/pkg/util"
)

// RequestFilter captures listing parameters. OwnerID scopes to a single
// customer; UnviewedByAdmin restricts tickets to those not yet bulk-marked
// as viewed.
type RequestFilter struct {
	Kind            domain.RequestKind
	OwnerID         *string
	UnviewedByAdmin bool
	Limit           int
	Offset          int
}

// RequestRepository encapsulates request persistence. Create enforces the
// unique constraint on human_id and surfaces a Conflict so callers can retry
// allocation.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.Request) error
	Update(ctx context.Context, request *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
	CountWithFilter(ctx context.Context, filter RequestFilter) (int, error)
	Delete(ctx context.Context, id string) error
	MarkViewedByAdmin(ctx context.Context, ids []string) error
	LatestHumanID(ctx context.Context, kind domain.RequestKind) (string, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, kind, human_id, owner_id, category, title, description, attachments,
       status, preferred_visit_at, assigned_visit_at, completed_at,
       lat, lng, address, outlet_name, viewed_by_admin, timeline, created_at, updated_at`

func (r *requestRepository) Create(ctx context.Context, request *domain.Request) error {
	timeline, err := marshalTimeline(request.Timeline)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO requests (kind, human_id, owner_id, category, title, description, attachments,
                              status, preferred_visit_at, assigned_visit_at,
                              lat, lng, address, outlet_name, viewed_by_admin, timeline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, query,
		request.Kind,
		request.HumanID,
		request.OwnerID,
		request.Category,
		request.Title,
		request.Description,
		request.Attachments,
		request.Status,
		request.PreferredVisitAt,
		request.AssignedVisitAt,
		request.Location.Lat,
		request.Location.Lng,
		request.Address,
		request.OutletName,
		request.ViewedByAdmin,
		timeline,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (r *requestRepository) Update(ctx context.Context, request *domain.Request) error {
	timeline, err := marshalTimeline(request.Timeline)
	if err != nil {
		return err
	}
	const query = `
        UPDATE requests SET status=$1, preferred_visit_at=$2, assigned_visit_at=$3, completed_at=$4,
            viewed_by_admin=$5, timeline=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		request.Status,
		request.PreferredVisitAt,
		request.AssignedVisitAt,
		request.CompletedAt,
		request.ViewedByAdmin,
		timeline,
		request.ID,
	)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("request", map[string]any{"id": request.ID})
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id=$1`, requestColumns)
	row := r.pool.QueryRow(ctx, query, id)
	request, err := scanRequest(row)
	if err != nil {
		return nil, translateError(err)
	}
	return request, nil
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	clauses, args := filterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM requests WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		requestColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var result []domain.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return result, nil
}

func (r *requestRepository) CountWithFilter(ctx context.Context, filter RequestFilter) (int, error) {
	clauses, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM requests WHERE %s`, strings.Join(clauses, " AND "))

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM requests WHERE id=$1`, id)
	if err != nil {
		return translateError(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("request", map[string]any{"id": id})
	}
	return nil
}

// MarkViewedByAdmin flags the given tickets as viewed. Ids with no matching
// row are silently ignored.
func (r *requestRepository) MarkViewedByAdmin(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE requests SET viewed_by_admin=TRUE, updated_at=NOW()
                   WHERE kind=$1 AND id = ANY($2)`
	if _, err := r.pool.Exec(ctx, query, domain.KindTicket, ids); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *requestRepository) LatestHumanID(ctx context.Context, kind domain.RequestKind) (string, error) {
	const query = `SELECT human_id FROM requests WHERE kind=$1 ORDER BY created_at DESC, human_id DESC LIMIT 1`
	var humanID string
	err := r.pool.QueryRow(ctx, query, kind).Scan(&humanID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", translateError(err)
	}
	return humanID, nil
}

func filterClauses(filter RequestFilter) ([]string, []any) {
	clauses := []string{"kind=$1"}
	args := []any{filter.Kind}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.UnviewedByAdmin {
		clauses = append(clauses, "viewed_by_admin=FALSE")
	}
	return clauses, args
}

func scanRequest(row pgx.Row) (*domain.Request, error) {
	var (
		request  domain.Request
		timeline []byte
	)
	if err := row.Scan(
		&request.ID,
		&request.Kind,
		&request.HumanID,
		&request.OwnerID,
		&request.Category,
		&request.Title,
		&request.Description,
		&request.Attachments,
		&request.Status,
		&request.PreferredVisitAt,
		&request.AssignedVisitAt,
		&request.CompletedAt,
		&request.Location.Lat,
		&request.Location.Lng,
		&request.Address,
		&request.OutletName,
		&request.ViewedByAdmin,
		&timeline,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if request.Attachments == nil {
		request.Attachments = []string{}
	}
	entries, err := unmarshalTimeline(timeline)
	if err != nil {
		return nil, err
	}
	request.Timeline = entries
	return &request, nil
}

func marshalTimeline(entries []domain.TimelineEntry) ([]byte, error) {
	if entries == nil {
		entries = []domain.TimelineEntry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return payload, nil
}

func unmarshalTimeline(payload []byte) ([]domain.TimelineEntry, error) {
	entries := []domain.TimelineEntry{}
	if len(payload) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	for i := range entries {
		if entries[i].Attachments == nil {
			entries[i].Attachments = []string{}
		}
		if entries[i].SeenBy == nil {
			entries[i].SeenBy = []string{}
		}
	}
	return entries, nil
}

// translateError maps pgx errors onto the application taxonomy. Unique
// violations become Conflict so the creation path can retry allocation.
func translateError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("request", nil)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperrors.NewConflict("duplicate identifier", map[string]any{"constraint": pgErr.ConstraintName})
	}
	return err
}
