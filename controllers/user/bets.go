package user

import (
	"lottery/helpers"
	"lottery/middlewares"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultBetsLimit = 50
	maxBetsLimit     = 200
)

func (h *Handler) Bets(c *fiber.Ctx) error {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		return helpers.JSONStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	limit := c.QueryInt("limit", defaultBetsLimit)
	if limit <= 0 || limit > maxBetsLimit {
		limit = defaultBetsLimit
	}

	bets, err := h.Accounts.Bets(c.UserContext(), u.ID, limit)
	if err != nil {
		return helpers.JSONFailure(c, err)
	}
	return helpers.JSONSuccess(c, "Bets retrieved successfully", bets)
}
