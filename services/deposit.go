package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"lottery/chain"
	"lottery/games"
	"lottery/models"
	"lottery/wallet"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DepositConfirmer reports whether expected has arrived at address.
type DepositConfirmer interface {
	CheckDeposit(ctx context.Context, address string, expected decimal.Decimal) chain.Status
}

type AddressGenerator interface {
	Generate() (wallet.Account, error)
}

type DepositService struct {
	db        *gorm.DB
	confirmer DepositConfirmer
	addresses AddressGenerator
	snapshot  BalanceSnapshot
}

func NewDepositService(db *gorm.DB, confirmer DepositConfirmer, addresses AddressGenerator, snapshot BalanceSnapshot) *DepositService {
	return &DepositService{db: db, confirmer: confirmer, addresses: addresses, snapshot: snapshot}
}

// CreateIntent issues a fresh deposit address the user is expected to pay amount into.
func (s *DepositService) CreateIntent(ctx context.Context, userID uint, amount decimal.Decimal) (*models.CryptoAddress, error) {
	if !amount.IsPositive() {
		return nil, games.ErrInvalidAmount
	}
	if _, err := loadBalance(s.db.WithContext(ctx), userID); err != nil {
		return nil, err
	}

	acct, err := s.addresses.Generate()
	if err != nil {
		return nil, err
	}

	intent := models.CryptoAddress{
		UserID:        userID,
		WalletAddress: acct.Address,
		Amount:        amount,
		PrivateKey:    acct.PrivateKey,
	}
	if err := s.db.WithContext(ctx).Create(&intent).Error; err != nil {
		return nil, errors.Wrap(err, "create deposit intent")
	}
	return &intent, nil
}

type DepositResult struct {
	Status   chain.Status     `json:"status"`
	Credited decimal.Decimal  `json:"credited"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

// CheckDeposit confirms the user's deposit at address and credits it once.
func (s *DepositService) CheckDeposit(ctx context.Context, userID uint, address string) (*DepositResult, error) {
	address = strings.TrimSpace(address)
	if !wallet.IsAddress(address) {
		return nil, ErrInvalidAddress
	}
	address = wallet.Checksum(address)

	var intent models.CryptoAddress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND wallet_address = ?", userID, address).
		First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDepositNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load deposit intent %s", address)
	}
	return s.ConfirmIntent(ctx, &intent)
}

// ConfirmIntent asks the confirmer about intent and, on a confirmed answer, credits it.
// The external call happens before any transaction opens. Used intents short-circuit to
// Confirmed, and a lost race on the is_used flag is reported the same way.
func (s *DepositService) ConfirmIntent(ctx context.Context, intent *models.CryptoAddress) (*DepositResult, error) {
	if intent.IsUsed {
		return &DepositResult{Status: chain.Confirmed, Credited: decimal.Zero}, nil
	}

	status := s.confirmer.CheckDeposit(ctx, intent.WalletAddress, intent.Amount)
	if !status.IsConfirmed() {
		return &DepositResult{Status: status, Credited: decimal.Zero}, nil
	}

	result := &DepositResult{Status: chain.Confirmed, Credited: decimal.Zero}
	var balance models.Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.CryptoAddress{}).
			Where("id = ? AND is_used = ?", intent.ID, false).
			Updates(map[string]any{"is_used": true, "used_at": now})
		if res.Error != nil {
			return errors.Wrapf(res.Error, "mark deposit %d used", intent.ID)
		}
		if res.RowsAffected != 1 {
			return nil
		}

		if err := creditBalance(tx, intent.UserID, intent.Amount); err != nil {
			return err
		}

		meta, _ := json.Marshal(map[string]any{"intent_id": intent.ID, "confirmation": string(status)})
		record := models.CryptoTransaction{
			UserID:  intent.UserID,
			Address: intent.WalletAddress,
			Amount:  intent.Amount,
			Type:    models.CryptoDeposit,
			Status:  models.CryptoStatusConfirmed,
			RefID:   uuid.New().String(),
			Meta:    datatypes.JSON(meta),
		}
		if err := tx.Create(&record).Error; err != nil {
			return errors.Wrap(err, "record deposit")
		}

		var err error
		if balance, err = loadBalance(tx, intent.UserID); err != nil {
			return err
		}
		result.Credited = intent.Amount
		result.Balance = &balance.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Balance != nil {
		intent.IsUsed = true
		publishBalance(ctx, s.snapshot, intent.UserID, balance)
	}
	return result, nil
}

// PendingIntents lists unused intents created after since with an ID above afterID,
// in ID order. Callers page by passing the last ID they saw.
func (s *DepositService) PendingIntents(ctx context.Context, since time.Time, afterID uint, limit int) ([]models.CryptoAddress, error) {
	var intents []models.CryptoAddress
	err := s.db.WithContext(ctx).
		Where("is_used = ? AND created_at >= ? AND id > ?", false, since, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&intents).Error
	if err != nil {
		return nil, errors.Wrap(err, "list pending deposits")
	}
	return intents, nil
}
