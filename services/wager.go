package services

import (
	"context"

	"lottery/games"
	"lottery/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WagerService struct {
	db       *gorm.DB
	catalog  *games.Catalog
	snapshot BalanceSnapshot
}

func NewWagerService(db *gorm.DB, catalog *games.Catalog, snapshot BalanceSnapshot) *WagerService {
	return &WagerService{db: db, catalog: catalog, snapshot: snapshot}
}

type PlaceBetRequest struct {
	UserID   uint
	GameCode string
	DrawID   uint
	Choice   games.Outcome
	Amount   decimal.Decimal
	// Tickets is the number of identical tickets to buy; zero means one.
	Tickets int
}

type PlaceBetResult struct {
	Bets            []models.Bet    `json:"bets"`
	Balance         decimal.Decimal `json:"balance"`
	PayoutPerTicket decimal.Decimal `json:"payout_per_ticket"`
}

// PlaceBet admits the tickets and debits their cost, or changes nothing and returns the
// reason. Cheap checks run first; the capacity counts, the debit and the inserts then
// share one transaction that holds the draw row, so concurrent purchases on the same
// draw are admitted one at a time against fresh counts.
func (s *WagerService) PlaceBet(ctx context.Context, req PlaceBetRequest) (*PlaceBetResult, error) {
	game, ok := s.catalog.Lookup(req.GameCode)
	if !ok {
		return nil, ErrInvalidGameType
	}
	if err := game.ValidateStake(req.Amount); err != nil {
		return nil, err
	}
	choice, err := game.NormalizeOutcome(req.Choice)
	if err != nil {
		return nil, err
	}
	tickets := req.Tickets
	if tickets == 0 {
		tickets = 1
	}
	if tickets < 0 || tickets > game.PerUserLimit {
		return nil, ErrInvalidTicketCount
	}

	var draw models.Draw
	err = s.db.WithContext(ctx).Preload("GameType").First(&draw, req.DrawID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(err, "load draw %d", req.DrawID)
	}
	if err != nil || !acceptsBets(&draw, game) {
		return nil, ErrDrawNotOpen
	}

	payout := game.Payout(req.Amount)
	result := &PlaceBetResult{PayoutPerTicket: payout}
	var balance models.Balance

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockDraw(tx, req.DrawID)
		if errors.Is(err, ErrDrawNotFound) {
			return ErrDrawNotOpen
		}
		if err != nil {
			return err
		}
		if !acceptsBets(locked, game) {
			return ErrDrawNotOpen
		}

		var mine, all int64
		if err := tx.Model(&models.Bet{}).
			Where("draw_id = ? AND user_id = ?", req.DrawID, req.UserID).
			Count(&mine).Error; err != nil {
			return errors.Wrap(err, "count user tickets")
		}
		if mine+int64(tickets) > int64(game.PerUserLimit) {
			return ErrUserLimitReached
		}

		if err := tx.Model(&models.Bet{}).
			Where("draw_id = ?", req.DrawID).
			Count(&all).Error; err != nil {
			return errors.Wrap(err, "count draw tickets")
		}
		if all+int64(tickets) > int64(game.DrawLimit) {
			return ErrDrawSoldOut
		}

		cost := req.Amount.Mul(decimal.NewFromInt(int64(tickets)))
		ok, err := debitBalance(tx, req.UserID, cost)
		if err != nil {
			return err
		}
		if !ok {
			return debitFailure(tx, req.UserID)
		}

		bets := make([]models.Bet, tickets)
		for i := range bets {
			bets[i] = models.Bet{
				UserID: req.UserID,
				DrawID: req.DrawID,
				Amount: req.Amount,
				Status: models.BetPending,
				Payout: payout,
			}
			bets[i].SetOutcome(choice)
		}
		if err := tx.Create(&bets).Error; err != nil {
			return errors.Wrap(err, "insert bets")
		}
		result.Bets = bets

		balance, err = loadBalance(tx, req.UserID)
		result.Balance = balance.Amount
		return err
	})
	if err != nil {
		return nil, err
	}

	publishBalance(ctx, s.snapshot, req.UserID, balance)
	return result, nil
}

func acceptsBets(draw *models.Draw, game games.Game) bool {
	return !draw.IsClosed && draw.GameType.Code == game.Code
}
