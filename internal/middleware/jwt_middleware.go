package middleware

import (
	"log"
	"strings"

	"backoffice/internal/models"
	"backoffice/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token. It
// populates the user_id and role locals for downstream handlers, which
// trust that identity without re-validating credentials.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		userID, _ := claims["user_id"].(string)
		role, _ := claims["role"].(string)
		c.Locals("user_id", userID)
		c.Locals("role", role)

		return c.Next()
	}
}

// StaffOnly restricts a route group to staff accounts. It must run after
// AuthRequired.
func StaffOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != models.RoleStaff {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "staff access required",
			})
		}
		return c.Next()
	}
}
