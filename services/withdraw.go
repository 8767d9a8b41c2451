package services

import (
	"context"
	"strings"

	"lottery/games"
	"lottery/models"
	"lottery/wallet"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WithdrawalService struct {
	db       *gorm.DB
	snapshot BalanceSnapshot
}

func NewWithdrawalService(db *gorm.DB, snapshot BalanceSnapshot) *WithdrawalService {
	return &WithdrawalService{db: db, snapshot: snapshot}
}

type WithdrawResult struct {
	Request models.WithdrawalRequest `json:"request"`
	Balance decimal.Decimal          `json:"balance"`
}

// RequestWithdrawal debits amount and records the pending request with its ledger row.
// All three writes commit together or not at all.
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, userID uint, amount decimal.Decimal, address string) (*WithdrawResult, error) {
	if !amount.IsPositive() {
		return nil, games.ErrInvalidAmount
	}
	address = strings.TrimSpace(address)
	if !wallet.IsAddress(address) {
		return nil, ErrInvalidAddress
	}
	address = wallet.Checksum(address)

	result := &WithdrawResult{}
	var balance models.Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := debitBalance(tx, userID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return debitFailure(tx, userID)
		}

		refID := uuid.New().String()
		req := models.WithdrawalRequest{
			UserID:        userID,
			Amount:        amount,
			WalletAddress: address,
			Status:        models.CryptoStatusPending,
			RefID:         refID,
		}
		if err := tx.Create(&req).Error; err != nil {
			return errors.Wrap(err, "create withdrawal request")
		}

		record := models.CryptoTransaction{
			UserID:  userID,
			Address: address,
			Amount:  amount,
			Type:    models.CryptoWithdrawal,
			Status:  models.CryptoStatusPending,
			RefID:   refID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return errors.Wrap(err, "record withdrawal")
		}

		result.Request = req
		balance, err = loadBalance(tx, userID)
		result.Balance = balance.Amount
		return err
	})
	if err != nil {
		return nil, err
	}

	publishBalance(ctx, s.snapshot, userID, balance)
	return result, nil
}
