package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/guardline/request-service/internal/domain"
)

// RequireCustomer ensures an outlet customer is authenticated.
func RequireCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Role != domain.RoleCustomer {
			return fiber.NewError(http.StatusForbidden, "customer required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the administrator principal.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.IsAdmin() {
			return fiber.NewError(http.StatusForbidden, "administrator required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
