package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/guardline/request-service/internal/auth"
	"github.com/guardline/request-service/internal/config"
	"github.com/guardline/request-service/internal/domain"
	"github.com/guardline/request-service/internal/repository"
	apperrors "github.com/guardline/request-service/pkg/util"
)

// adminPrincipalID is the stable subject id of the configured administrator.
const adminPrincipalID = "admin"

// AuthService coordinates registration and login flows for outlet customers
// plus the config-credentialed administrator.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	adminCfg   config.AdminConfig
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// RegisterInput describes a customer registration payload.
type RegisterInput struct {
	Name       string
	Email      string
	Phone      string
	Password   string
	OutletName string
	Address    string
	Location   domain.Location
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		adminCfg:   cfg.Auth.Admin,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterUser creates a new customer account.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !apperrors.IsNotFound(err) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		OutletName:   strings.TrimSpace(input.OutletName),
		Address:      strings.TrimSpace(input.Address),
		Location:     input.Location,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.RoleCustomer, user.Name)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// LoginUser authenticates a customer.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.RoleCustomer, user.Name)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// LoginAdmin authenticates against the configured administrator credentials
// and issues a self-contained admin token. There is no admin user record.
func (s *AuthService) LoginAdmin(_ context.Context, username, password string) (string, time.Time, error) {
	if s.adminCfg.Username == "" || s.adminCfg.Password == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("admin login disabled")
	}
	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminCfg.Username))
	passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminCfg.Password))
	if userMatch&passMatch != 1 {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.generateAdminToken()
}

func (s *AuthService) generateAdminToken() (string, time.Time, error) {
	displayName := s.adminCfg.DisplayName
	if displayName == "" {
		displayName = "Administrator"
	}
	return s.tokenMgr.GenerateToken(adminPrincipalID, domain.RoleAdmin, displayName)
}

// ChangePassword rotates a customer's password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}
