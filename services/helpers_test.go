package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"lottery/database"
	"lottery/games"
	"lottery/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory ledger. One pooled connection means one
// transaction at a time, which is what the row locks give us on postgres.
func newTestDB(t *testing.T, catalog *games.Catalog) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedGameTypes(db, catalog))
	return db
}

// miniCatalog has a tiny draw so capacity races are quick to provoke.
func miniCatalog(t *testing.T) *games.Catalog {
	t.Helper()
	c, err := games.New(games.Game{
		Code:         "MINI",
		Name:         "Mini",
		Kind:         games.KindNumber,
		Multiplier:   decimal.NewFromInt(5),
		MinAmount:    decimal.NewFromInt(1),
		MaxAmount:    decimal.NewFromInt(10),
		MinChoice:    1,
		MaxChoice:    9,
		PerUserLimit: 2,
		DrawLimit:    3,
		DrawPrefix:   "MN-",
		DrawStart:    1,
	})
	require.NoError(t, err)
	return c
}

func createUser(t *testing.T, db *gorm.DB, name, balance string) models.User {
	t.Helper()
	user := models.User{Username: name, Balance: decimal.RequireFromString(balance)}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createDraw(t *testing.T, db *gorm.DB, catalog *games.Catalog, gameCode string) models.Draw {
	t.Helper()
	draw, err := NewDrawService(db, catalog).CreateDraw(context.Background(), gameCode, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return *draw
}

func balanceOf(t *testing.T, db *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Balance
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

type recordingSnapshot struct {
	mu       sync.Mutex
	balances map[uint]decimal.Decimal
	calls    int
}

func newRecordingSnapshot() *recordingSnapshot {
	return &recordingSnapshot{balances: map[uint]decimal.Decimal{}}
}

func (r *recordingSnapshot) StoreBalance(ctx context.Context, userID uint, balance models.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[userID] = balance.Amount
	r.calls++
	return nil
}

func (r *recordingSnapshot) get(userID uint) (decimal.Decimal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	return b, ok
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
