package helpers

import (
	"log"

	"lottery/services"

	"github.com/gofiber/fiber/v2"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, message string) error {
	return JSONStatus(c, fiber.StatusBadRequest, message)
}

func JSONStatus(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

// JSONFailure renders err as its reason code, or logs it and answers INTERNAL_ERROR
// when it carries none.
func JSONFailure(c *fiber.Ctx, err error) error {
	if reason := services.Reason(err); reason != "" {
		return JSONError(c, reason)
	}
	log.Printf("❌ %s %s: %+v", c.Method(), c.Path(), err)
	return JSONStatus(c, fiber.StatusInternalServerError, "INTERNAL_ERROR")
}
