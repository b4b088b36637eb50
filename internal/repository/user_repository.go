package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guardline/request-service/internal/domain"
	apperrors "github.com/guardline/request-service/pkg/util"
)

// UserRepository encapsulates customer-account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, phone, password_hash, outlet_name, address, lat, lng, status, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, phone, password_hash, outlet_name, address, lat, lng, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.OutletName,
		user.Address,
		user.Location.Lat,
		user.Location.Lng,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return translateUserError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, phone=$2, password_hash=$3, outlet_name=$4, address=$5,
            lat=$6, lng=$7, status=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Phone,
		user.PasswordHash,
		user.OutletName,
		user.Address,
		user.Location.Lat,
		user.Location.Lng,
		user.Status,
		user.ID,
	)
	if err != nil {
		return translateUserError(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("user", map[string]any{"id": user.ID})
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.OutletName,
		&user.Address,
		&user.Location.Lat,
		&user.Location.Lng,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, translateUserError(err)
	}
	return &user, nil
}

func translateUserError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", nil)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperrors.NewConflict("email already registered", nil)
	}
	return err
}
