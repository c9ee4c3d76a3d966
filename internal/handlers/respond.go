package handlers

import (
	"log"
	"math"

	"github.com/gofiber/fiber/v2"

	"backoffice/internal/apperr"
	"backoffice/internal/models"
)

// paginationMap builds the pagination envelope for a list response. The
// total key is resource-specific (totalOrders, totalCustomers).
func paginationMap(totalKey string, total int64, page, limit int) fiber.Map {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return fiber.Map{
		totalKey:      total,
		"totalPages":  totalPages,
		"currentPage": page,
		"pageSize":    limit,
	}
}

// respondError maps an application error onto its HTTP status. Anything
// unclassified is a 500 with a generic body; internals never leak into the
// message.
func respondError(c *fiber.Ctx, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindBadRequest:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case apperr.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	}
	log.Printf("Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
}

func requesterID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func isStaff(c *fiber.Ctx) bool {
	role, _ := c.Locals("role").(string)
	return role == models.RoleStaff
}
