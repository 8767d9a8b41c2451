package wallet

import (
	"lottery/helpers"
	"lottery/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WithdrawRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	WalletAddress string          `json:"wallet_address"`
}

func (h *Handler) Withdraw(c *fiber.Ctx) error {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		return helpers.JSONStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	res, err := h.Withdrawals.RequestWithdrawal(c.UserContext(), u.ID, req.Amount, req.WalletAddress)
	if err != nil {
		return helpers.JSONFailure(c, err)
	}
	return helpers.JSONSuccess(c, "Withdrawal requested", res)
}
