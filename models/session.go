package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Session is issued by the login flow; this service only reads it to identify the
// caller and keeps Balance in step with the ledger after money moves.
type Session struct {
	gorm.Model
	SID            string          `gorm:"size:36;uniqueIndex;not null"`
	UserID         uint            `gorm:"index"`
	User           User            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Balance        decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	BalanceVersion int64           `gorm:"not null;default:0"`
	ExpiresAt      time.Time       `gorm:"index"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) (err error) {
	if s.SID == "" {
		s.SID = strings.ToLower(uuid.New().String())
	}
	return nil
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
