package game

import (
	"lottery/games"
	"lottery/helpers"
	"lottery/middlewares"
	"lottery/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handler struct {
	Draws  *services.DrawService
	Wagers *services.WagerService
}

func (h *Handler) OpenDraw(c *fiber.Ctx) error {
	draw, err := h.Draws.OpenDraw(c.UserContext(), c.Params("code"))
	if err != nil {
		return helpers.JSONFailure(c, err)
	}
	if draw == nil {
		return helpers.JSONSuccess(c, "No open draw", nil)
	}
	return helpers.JSONSuccess(c, "Open draw retrieved successfully", draw)
}

type PlaceBetRequest struct {
	DrawID       uint            `json:"draw_id"`
	ChosenNumber *int            `json:"chosen_number"`
	ChosenColor  string          `json:"chosen_color"`
	Amount       decimal.Decimal `json:"amount"`
	Tickets      int             `json:"tickets"`
}

func (h *Handler) PlaceBet(c *fiber.Ctx) error {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		return helpers.JSONStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	var req PlaceBetRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	choice := games.Outcome{Number: games.NoNumber, Color: req.ChosenColor}
	if req.ChosenNumber != nil {
		choice.Number = *req.ChosenNumber
	}

	res, err := h.Wagers.PlaceBet(c.UserContext(), services.PlaceBetRequest{
		UserID:   u.ID,
		GameCode: c.Params("code"),
		DrawID:   req.DrawID,
		Choice:   choice,
		Amount:   req.Amount,
		Tickets:  req.Tickets,
	})
	if err != nil {
		return helpers.JSONFailure(c, err)
	}
	return helpers.JSONSuccess(c, "Bet placed successfully", res)
}
