package user

import (
	"lottery/helpers"
	"lottery/middlewares"
	"lottery/services"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Accounts *services.AccountService
}

func (h *Handler) Balance(c *fiber.Ctx) error {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		return helpers.JSONStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	balance, err := h.Accounts.Balance(c.UserContext(), u.ID)
	if err != nil {
		return helpers.JSONFailure(c, err)
	}

	return helpers.JSONSuccess(c, "Balance retrieved successfully", fiber.Map{
		"username": u.Username,
		"balance":  balance,
	})
}
