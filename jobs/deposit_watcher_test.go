package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"lottery/chain"
	"lottery/database"
	"lottery/games"
	"lottery/models"
	"lottery/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// funded confirms only the addresses it knows about.
type funded struct {
	mu        sync.Mutex
	addresses map[string]bool
	seen      []string
}

func (f *funded) CheckDeposit(ctx context.Context, address string, expected decimal.Decimal) chain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, address)
	if f.addresses[address] {
		return chain.Confirmed
	}
	return chain.Pending(decimal.Zero)
}

func openLedger(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedGameTypes(db, games.Default()))
	return db
}

func TestDepositWatcherRunOnce(t *testing.T) {
	db := openLedger(t)
	user := models.User{Username: "ann", Balance: decimal.Zero}
	require.NoError(t, db.Create(&user).Error)

	paid := "0x0000000000000000000000000000000000000aaa"
	unpaid := "0x0000000000000000000000000000000000000bbb"
	stale := "0x0000000000000000000000000000000000000ccc"
	for _, addr := range []string{paid, unpaid, stale} {
		require.NoError(t, db.Create(&models.CryptoAddress{UserID: user.ID, WalletAddress: addr, Amount: decimal.NewFromInt(15)}).Error)
	}
	require.NoError(t, db.Model(&models.CryptoAddress{}).
		Where("wallet_address = ?", stale).
		Update("created_at", time.Now().Add(-72*time.Hour)).Error)

	confirmer := &funded{addresses: map[string]bool{paid: true, stale: true}}
	w := &DepositWatcher{
		Deposits:    services.NewDepositService(db, confirmer, nil, nil),
		Window:      24 * time.Hour,
		Concurrency: 2,
	}

	credited, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, credited)
	assert.ElementsMatch(t, []string{paid, unpaid}, confirmer.seen)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(15)), got.Balance.String())

	credited, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, credited)
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(15)), got.Balance.String())
}

func TestDepositWatcherReachesIntentsPastFirstBatch(t *testing.T) {
	db := openLedger(t)
	user := models.User{Username: "ann", Balance: decimal.Zero}
	require.NoError(t, db.Create(&user).Error)

	intents := make([]models.CryptoAddress, depositBatchSize+1)
	for i := range intents {
		intents[i] = models.CryptoAddress{
			UserID:        user.ID,
			WalletAddress: fmt.Sprintf("0x%040x", i+1),
			Amount:        decimal.NewFromInt(1),
		}
	}
	require.NoError(t, db.CreateInBatches(&intents, 100).Error)
	newest := intents[len(intents)-1].WalletAddress

	confirmer := &funded{addresses: map[string]bool{newest: true}}
	w := &DepositWatcher{
		Deposits:    services.NewDepositService(db, confirmer, nil, nil),
		Window:      time.Hour,
		Concurrency: 4,
	}

	credited, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, credited)
	assert.Len(t, confirmer.seen, depositBatchSize)

	credited, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, credited)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1)), got.Balance.String())

	// the next pass starts over from the oldest unpaid intent
	confirmer.seen = nil
	_, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, confirmer.seen, depositBatchSize)
	assert.Contains(t, confirmer.seen, intents[0].WalletAddress)
	assert.NotContains(t, confirmer.seen, newest)
}
