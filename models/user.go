package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Username string          `gorm:"uniqueIndex;size:64" json:"username"`
	Balance  decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"balance"`
	IsAdmin  bool            `gorm:"default:false" json:"is_admin"`
	IsActive bool            `gorm:"default:true" json:"is_active"`
	// BalanceVersion counts writes to Balance.
	BalanceVersion int64 `gorm:"not null;default:0" json:"-"`

	Bets     []Bet     `gorm:"foreignKey:UserID" json:"-"`
	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`
}

// Balance is a user's balance as of one ledger write. A higher Version is a later write.
type Balance struct {
	Amount  decimal.Decimal
	Version int64
}
