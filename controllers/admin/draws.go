package admin

import (
	"time"

	"lottery/games"
	"lottery/helpers"
	"lottery/services"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type drawView struct {
	ID            uint       `json:"id"`
	Code          string     `json:"code"`
	GameTypeCode  string     `json:"game_type_code"`
	DrawTime      time.Time  `json:"draw_time"`
	IsClosed      bool       `json:"is_closed"`
	WinningNumber *int       `json:"winning_number,omitempty"`
	WinningColor  *string    `json:"winning_color,omitempty"`
	Result        string     `json:"result,omitempty"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

func (h *Handler) ListDraws(c *fiber.Ctx) error {
	draws, err := h.Draws.ListDraws(c.UserContext())
	if err != nil {
		return helpers.JSONFailure(c, err)
	}

	views := make([]drawView, 0, len(draws))
	for _, d := range draws {
		var result string
		if outcome, ok := d.WinningOutcome(); ok {
			result = outcome.String()
		}
		views = append(views, drawView{
			ID:            d.ID,
			Code:          d.Code,
			GameTypeCode:  d.GameType.Code,
			DrawTime:      d.DrawTime,
			IsClosed:      d.IsClosed,
			WinningNumber: d.WinningNumber,
			WinningColor:  d.WinningColor,
			Result:        result,
			ClosedAt:      d.ClosedAt,
		})
	}
	return helpers.JSONSuccess(c, "Draws retrieved successfully", views)
}

type CreateDrawRequest struct {
	GameTypeCode string    `json:"game_type_code"`
	DrawTime     time.Time `json:"draw_time"`
}

func (h *Handler) CreateDraw(c *fiber.Ctx) error {
	var req CreateDrawRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	draw, err := h.Draws.CreateDraw(c.UserContext(), req.GameTypeCode, req.DrawTime)
	if err != nil {
		return helpers.JSONFailure(c, err)
	}
	return helpers.JSONSuccess(c, "Draw created successfully", draw)
}

type CloseDrawRequest struct {
	WinningNumber *int   `json:"winning_number"`
	WinningColor  string `json:"winning_color"`
}

func (h *Handler) CloseDraw(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, services.ErrDrawNotFound.Error())
	}

	var req CloseDrawRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	declared := games.Outcome{Number: games.NoNumber, Color: req.WinningColor}
	if req.WinningNumber != nil {
		declared.Number = *req.WinningNumber
	}

	res, err := h.Settlement.SettleDraw(c.UserContext(), uint(id), declared)
	if errors.Is(err, services.ErrDrawAlreadyClosed) {
		return helpers.JSONSuccess(c, "Draw already closed", nil)
	}
	if err != nil {
		return helpers.JSONFailure(c, err)
	}

	return helpers.JSONSuccess(c, "Draw closed successfully", res)
}
