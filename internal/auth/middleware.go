package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/guardline/request-service/internal/domain"
	"github.com/guardline/request-service/internal/repository"
	apperrors "github.com/guardline/request-service/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and resolves principals. Customer
// tokens are backed by a user record; admin tokens are self-contained, the
// admin is never persisted.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	var principal domain.Principal
	switch claims.Role {
	case domain.RoleAdmin:
		displayName := claims.DisplayName
		if displayName == "" {
			displayName = "Administrator"
		}
		principal = domain.Principal{
			ID:          claims.SubjectID,
			Role:        domain.RoleAdmin,
			DisplayName: displayName,
		}
	case domain.RoleCustomer:
		user, err := m.users.GetByID(c.Context(), claims.SubjectID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewUnauthorized("user not found")
			}
			return apperrors.MapError(err)
		}
		if user.Status != domain.UserStatusActive {
			return apperrors.NewUnauthorized("account suspended")
		}
		principal = domain.Principal{
			ID:          user.ID,
			Role:        domain.RoleCustomer,
			DisplayName: user.Name,
		}
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated actor.
func PrincipalFromContext(c *fiber.Ctx) (domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}
