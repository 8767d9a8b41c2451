package services

import (
	"lottery/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// debitBalance takes amount from the user only if the committed balance covers it.
// It reports false when the guard did not match.
func debitBalance(tx *gorm.DB, userID uint, amount decimal.Decimal) (bool, error) {
	res := tx.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Updates(map[string]any{
			"balance":         gorm.Expr("balance - ?", amount),
			"balance_version": gorm.Expr("balance_version + 1"),
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "debit user %d", userID)
	}
	return res.RowsAffected == 1, nil
}

func creditBalance(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"balance":         gorm.Expr("balance + ?", amount),
			"balance_version": gorm.Expr("balance_version + 1"),
		})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "credit user %d", userID)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func loadBalance(tx *gorm.DB, userID uint) (models.Balance, error) {
	var user models.User
	if err := tx.Select("id", "balance", "balance_version").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Balance{}, ErrUserNotFound
		}
		return models.Balance{}, errors.Wrapf(err, "load balance of user %d", userID)
	}
	return models.Balance{Amount: user.Balance, Version: user.BalanceVersion}, nil
}

// debitFailure tells a missing user apart from a short balance after a debit guard missed.
func debitFailure(tx *gorm.DB, userID uint) error {
	if _, err := loadBalance(tx, userID); err != nil {
		return err
	}
	return ErrInsufficientBalance
}

// lockDraw loads a draw and its game type, holding the draw row until the transaction ends.
func lockDraw(tx *gorm.DB, drawID uint) (*models.Draw, error) {
	var draw models.Draw
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&draw, drawID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDrawNotFound
		}
		return nil, errors.Wrapf(err, "load draw %d", drawID)
	}
	if err := tx.First(&draw.GameType, draw.GameTypeID).Error; err != nil {
		return nil, errors.Wrapf(err, "load game type of draw %d", drawID)
	}
	return &draw, nil
}
