package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CryptoAddress is a one-time deposit intent. IsUsed flips false -> true exactly once,
// when the deposit is credited.
type CryptoAddress struct {
	gorm.Model

	UserID        uint            `gorm:"index;not null" json:"user_id"`
	WalletAddress string          `gorm:"uniqueIndex;size:64;not null" json:"wallet_address"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"amount"`
	IsUsed        bool            `gorm:"index;not null;default:false" json:"is_used"`
	UsedAt        *time.Time      `json:"used_at,omitempty"`
	PrivateKey    string          `gorm:"size:512" json:"-"`
}

type CryptoTxType string

const (
	CryptoDeposit    CryptoTxType = "DEPOSIT"
	CryptoWithdrawal CryptoTxType = "WITHDRAWAL"
)

const (
	CryptoStatusConfirmed = "CONFIRMED"
	CryptoStatusPending   = "PENDING"
)

// CryptoTransaction is append-only; only withdrawal status is refined later, elsewhere.
type CryptoTransaction struct {
	gorm.Model

	UserID  uint            `gorm:"index;not null" json:"user_id"`
	Address string          `gorm:"size:64;index" json:"address"`
	Amount  decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"amount"`
	Type    CryptoTxType    `gorm:"size:16;index" json:"type"`
	Status  string          `gorm:"size:16;index" json:"status"`
	RefID   string          `gorm:"size:64;index" json:"ref_id"`
	Meta    datatypes.JSON  `json:"meta,omitempty"`
}

type WithdrawalRequest struct {
	gorm.Model

	UserID        uint            `gorm:"index;not null" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"amount"`
	WalletAddress string          `gorm:"size:64;not null" json:"wallet_address"`
	Status        string          `gorm:"size:16;index" json:"status"`
	RefID         string          `gorm:"size:64;index" json:"ref_id"`
}
