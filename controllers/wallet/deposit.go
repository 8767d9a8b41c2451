package wallet

import (
	"lottery/chain"
	"lottery/helpers"
	"lottery/middlewares"
	"lottery/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handler struct {
	Deposits    *services.DepositService
	Withdrawals *services.WithdrawalService
}

type GenerateRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		return helpers.JSONStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	intent, err := h.Deposits.CreateIntent(c.UserContext(), u.ID, req.Amount)
	if err != nil {
		return helpers.JSONFailure(c, err)
	}
	return helpers.JSONSuccess(c, "Deposit address generated", fiber.Map{
		"wallet_address": intent.WalletAddress,
		"amount":         intent.Amount,
	})
}

type CheckRequest struct {
	Address string `json:"address"`
}

func (h *Handler) Check(c *fiber.Ctx) error {
	u, ok := middlewares.CurrentUser(c)
	if !ok {
		return helpers.JSONStatus(c, fiber.StatusUnauthorized, "INVALID_SESSION")
	}

	var req CheckRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	res, err := h.Deposits.CheckDeposit(c.UserContext(), u.ID, req.Address)
	if err != nil {
		return helpers.JSONFailure(c, err)
	}

	switch {
	case res.Credited.IsPositive():
		return helpers.JSONSuccess(c, "Deposit credited", res)
	case res.Status == chain.Confirmed:
		return helpers.JSONSuccess(c, "Deposit already credited", res)
	}
	return helpers.JSONSuccess(c, "Deposit not confirmed yet", res)
}
