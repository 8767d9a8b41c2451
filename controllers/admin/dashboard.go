package admin

import (
	"lottery/helpers"
	"lottery/services"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Draws      *services.DrawService
	Settlement *services.SettlementService
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Draws.Dashboard(c.UserContext())
	if err != nil {
		return helpers.JSONFailure(c, err)
	}
	return helpers.JSONSuccess(c, "Dashboard retrieved successfully", stats)
}
