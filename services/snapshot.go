package services

import (
	"context"
	"log"

	"lottery/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// BalanceSnapshot receives a user's balance right after a money-moving transaction
// commits, so cached copies shown to the caller do not drift from the ledger.
// Publications can arrive out of commit order; stores keep the highest Version.
type BalanceSnapshot interface {
	StoreBalance(ctx context.Context, userID uint, balance models.Balance) error
}

// Snapshots fans one balance out to several stores. Every store is attempted.
type Snapshots []BalanceSnapshot

func (s Snapshots) StoreBalance(ctx context.Context, userID uint, balance models.Balance) error {
	var first error
	for _, snap := range s {
		if err := snap.StoreBalance(ctx, userID, balance); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SessionSnapshot writes the balance into every session of the user holding an older one.
type SessionSnapshot struct {
	DB *gorm.DB
}

func (s SessionSnapshot) StoreBalance(ctx context.Context, userID uint, balance models.Balance) error {
	err := s.DB.WithContext(ctx).
		Model(&models.Session{}).
		Where("user_id = ? AND balance_version < ?", userID, balance.Version).
		Updates(map[string]any{"balance": balance.Amount, "balance_version": balance.Version}).Error
	return errors.Wrapf(err, "store session balance of user %d", userID)
}

func publishBalance(ctx context.Context, snap BalanceSnapshot, userID uint, balance models.Balance) {
	if snap == nil {
		return
	}
	if err := snap.StoreBalance(ctx, userID, balance); err != nil {
		log.Printf("❌ balance snapshot for user %d: %v", userID, err)
	}
}
