package routes

import (
	"lottery/controllers/admin"
	"lottery/controllers/game"
	"lottery/controllers/user"
	walletctl "lottery/controllers/wallet"
	"lottery/games"
	"lottery/middlewares"
	"lottery/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services is everything the HTTP surface renders.
type Services struct {
	Accounts    *services.AccountService
	Draws       *services.DrawService
	Wagers      *services.WagerService
	Settlement  *services.SettlementService
	Deposits    *services.DepositService
	Withdrawals *services.WithdrawalService
}

// NewServices builds the core services over one ledger; snapshot may be nil.
func NewServices(db *gorm.DB, catalog *games.Catalog, confirmer services.DepositConfirmer, addresses services.AddressGenerator, snapshot services.BalanceSnapshot) Services {
	return Services{
		Accounts:    services.NewAccountService(db),
		Draws:       services.NewDrawService(db, catalog),
		Wagers:      services.NewWagerService(db, catalog, snapshot),
		Settlement:  services.NewSettlementService(db, catalog, snapshot),
		Deposits:    services.NewDepositService(db, confirmer, addresses, snapshot),
		Withdrawals: services.NewWithdrawalService(db, snapshot),
	}
}

func Setup(app *fiber.App, db *gorm.DB, svc Services) {
	userHandler := &user.Handler{Accounts: svc.Accounts}
	gameHandler := &game.Handler{Draws: svc.Draws, Wagers: svc.Wagers}
	walletHandler := &walletctl.Handler{Deposits: svc.Deposits, Withdrawals: svc.Withdrawals}
	adminHandler := &admin.Handler{Draws: svc.Draws, Settlement: svc.Settlement}

	auth := middlewares.SessionAuth(db)

	userroutes := app.Group("/user", auth)
	userroutes.Get("/balance", userHandler.Balance)
	userroutes.Get("/bets", userHandler.Bets)

	gameroutes := app.Group("/games", auth)
	gameroutes.Get("/:code/draw", gameHandler.OpenDraw)
	gameroutes.Post("/:code/bets", gameHandler.PlaceBet)

	walletroutes := app.Group("/wallet", auth)
	walletroutes.Post("/generate", walletHandler.Generate)
	walletroutes.Post("/check", walletHandler.Check)
	walletroutes.Post("/withdraw", walletHandler.Withdraw)

	adminroutes := app.Group("/admin", auth, middlewares.AdminOnly())
	adminroutes.Get("/dashboard", adminHandler.Dashboard)
	adminroutes.Get("/draws", adminHandler.ListDraws)
	adminroutes.Post("/draws", adminHandler.CreateDraw)
	adminroutes.Post("/draws/:id/close", adminHandler.CloseDraw)
}
