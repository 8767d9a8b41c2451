package services

import (
	"context"

	"lottery/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

func (s *AccountService) Balance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	balance, err := loadBalance(s.db.WithContext(ctx), userID)
	return balance.Amount, err
}

// Bets lists the user's tickets, newest first.
func (s *AccountService) Bets(ctx context.Context, userID uint, limit int) ([]models.Bet, error) {
	var bets []models.Bet
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&bets).Error
	if err != nil {
		return nil, errors.Wrapf(err, "list bets of user %d", userID)
	}
	return bets, nil
}
