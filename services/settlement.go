package services

import (
	"context"
	"maps"
	"slices"
	"time"

	"lottery/games"
	"lottery/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettlementService struct {
	db       *gorm.DB
	catalog  *games.Catalog
	snapshot BalanceSnapshot
}

func NewSettlementService(db *gorm.DB, catalog *games.Catalog, snapshot BalanceSnapshot) *SettlementService {
	return &SettlementService{db: db, catalog: catalog, snapshot: snapshot}
}

type SettleResult struct {
	Draw        models.Draw     `json:"draw"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
	TotalPayout decimal.Decimal `json:"total_payout"`
	// Balances holds the post-credit balance of every paid user.
	Balances map[uint]decimal.Decimal `json:"-"`
}

// SettleDraw closes the draw with the declared outcome and resolves all of its bets in
// one transaction. A draw settles once; any later call fails with ErrDrawAlreadyClosed
// and changes nothing.
func (s *SettlementService) SettleDraw(ctx context.Context, drawID uint, declared games.Outcome) (*SettleResult, error) {
	result := &SettleResult{
		TotalPayout: decimal.Zero,
		Balances:    map[uint]decimal.Decimal{},
	}
	published := map[uint]models.Balance{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		draw, err := lockDraw(tx, drawID)
		if err != nil {
			return err
		}
		if draw.IsClosed {
			return ErrDrawAlreadyClosed
		}

		game, ok := s.catalog.Lookup(draw.GameType.Code)
		if !ok {
			return ErrInvalidGameType
		}
		outcome, err := game.NormalizeOutcome(declared)
		switch {
		case errors.Is(err, games.ErrInvalidNumber):
			return ErrInvalidWinningNumber
		case errors.Is(err, games.ErrInvalidColor):
			return ErrInvalidWinningColor
		case err != nil:
			return err
		}

		now := time.Now()
		updates := map[string]any{"is_closed": true, "closed_at": now}
		if game.Kind == games.KindColor {
			updates["winning_color"] = outcome.Color
		} else {
			updates["winning_number"] = outcome.Number
		}
		res := tx.Model(&models.Draw{}).
			Where("id = ? AND is_closed = ?", draw.ID, false).
			Updates(updates)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "close draw %d", draw.ID)
		}
		if res.RowsAffected != 1 {
			return ErrDrawAlreadyClosed
		}

		var bets []models.Bet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("draw_id = ? AND status = ?", draw.ID, models.BetPending).
			Order("id").
			Find(&bets).Error; err != nil {
			return errors.Wrapf(err, "load bets of draw %d", draw.ID)
		}

		credits := map[uint]decimal.Decimal{}
		for i := range bets {
			status, payout := resolveBet(&bets[i], outcome)
			res := tx.Model(&models.Bet{}).
				Where("id = ? AND status = ?", bets[i].ID, models.BetPending).
				Updates(map[string]any{"status": status, "payout": payout})
			if res.Error != nil {
				return errors.Wrapf(res.Error, "resolve bet %d", bets[i].ID)
			}
			if res.RowsAffected != 1 {
				return errors.Errorf("bet %d was resolved concurrently", bets[i].ID)
			}

			if status == models.BetLost {
				result.Lost++
				continue
			}
			result.Won++
			if payout.IsPositive() {
				credits[bets[i].UserID] = credits[bets[i].UserID].Add(payout)
				result.TotalPayout = result.TotalPayout.Add(payout)
			}
		}

		// Ascending user order keeps row locks acquired in the same order across settlements.
		for _, userID := range slices.Sorted(maps.Keys(credits)) {
			if err := creditBalance(tx, userID, credits[userID]); err != nil {
				return err
			}
			balance, err := loadBalance(tx, userID)
			if err != nil {
				return err
			}
			result.Balances[userID] = balance.Amount
			published[userID] = balance
		}

		draw.IsClosed = true
		draw.ClosedAt = &now
		if game.Kind == games.KindColor {
			draw.WinningColor = &outcome.Color
		} else {
			draw.WinningNumber = &outcome.Number
		}
		result.Draw = *draw
		return nil
	})
	if err != nil {
		return nil, err
	}

	for userID, balance := range published {
		publishBalance(ctx, s.snapshot, userID, balance)
	}
	return result, nil
}

// resolveBet compares the stored choice with the declared outcome by plain equality.
// Winners keep the payout fixed at purchase time.
func resolveBet(bet *models.Bet, outcome games.Outcome) (models.BetStatus, decimal.Decimal) {
	if bet.Outcome().Equal(outcome) {
		return models.BetWon, bet.Payout
	}
	return models.BetLost, decimal.Zero
}
