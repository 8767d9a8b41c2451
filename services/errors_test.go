package services

import (
	"context"
	"testing"

	"lottery/games"
	"lottery/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReason(t *testing.T) {
	assert.Equal(t, "DRAW_SOLD_OUT", Reason(ErrDrawSoldOut))
	assert.Equal(t, "INVALID_COLOR", Reason(games.ErrInvalidColor))
	assert.Equal(t, "MALFORMED_DRAW_CODE", Reason(errors.Wrap(ErrMalformedDrawCode, "draw 3")))
	assert.Empty(t, Reason(errors.New("connection reset")))
	assert.Empty(t, Reason(nil))
}

type failingSnapshot struct{}

func (failingSnapshot) StoreBalance(ctx context.Context, userID uint, balance models.Balance) error {
	return errors.New("cache down")
}

func TestSnapshotsReachEveryStore(t *testing.T) {
	db := newTestDB(t, miniCatalog(t))
	user := createUser(t, db, "ann", "10")
	session := models.Session{UserID: user.ID}
	require.NoError(t, db.Create(&session).Error)
	assert.Len(t, session.SID, 36)

	rec := newRecordingSnapshot()
	fan := Snapshots{failingSnapshot{}, SessionSnapshot{DB: db}, rec}

	// a failing store after commit never fails the money movement
	_, err := NewWithdrawalService(db, fan).RequestWithdrawal(context.Background(), user.ID, dec("2"), testAddress)
	require.NoError(t, err)

	var stored models.Session
	require.NoError(t, db.First(&stored, session.ID).Error)
	requireDecimal(t, "8", stored.Balance)
	assert.EqualValues(t, 1, stored.BalanceVersion)
	cached, ok := rec.get(user.ID)
	require.True(t, ok)
	requireDecimal(t, "8", cached)

	err = fan.StoreBalance(context.Background(), user.ID, models.Balance{Amount: dec("12.25"), Version: 2})
	assert.EqualError(t, err, "cache down")
	require.NoError(t, db.First(&stored, session.ID).Error)
	requireDecimal(t, "12.25", stored.Balance)
}

func TestSessionSnapshotKeepsNewestVersion(t *testing.T) {
	db := newTestDB(t, miniCatalog(t))
	user := createUser(t, db, "ann", "0")
	session := models.Session{UserID: user.ID}
	require.NoError(t, db.Create(&session).Error)
	snap := SessionSnapshot{DB: db}
	ctx := context.Background()

	// the later write is published first, then the earlier one arrives
	require.NoError(t, snap.StoreBalance(ctx, user.ID, models.Balance{Amount: dec("40"), Version: 5}))
	require.NoError(t, snap.StoreBalance(ctx, user.ID, models.Balance{Amount: dec("70"), Version: 3}))

	var stored models.Session
	require.NoError(t, db.First(&stored, session.ID).Error)
	requireDecimal(t, "40", stored.Balance)
	assert.EqualValues(t, 5, stored.BalanceVersion)

	require.NoError(t, snap.StoreBalance(ctx, user.ID, models.Balance{Amount: dec("25"), Version: 6}))
	require.NoError(t, db.First(&stored, session.ID).Error)
	requireDecimal(t, "25", stored.Balance)
}

func TestLedgerWritesBumpBalanceVersion(t *testing.T) {
	catalog := games.Default()
	db := newTestDB(t, catalog)
	user := createUser(t, db, "ann", "100")
	draw := createDraw(t, db, catalog, "NUMBER")

	placeBet(t, db, catalog, user.ID, draw, games.Outcome{Number: 42}, "10")
	placeBet(t, db, catalog, user.ID, draw, games.Outcome{Number: 43}, "10")
	balance, err := loadBalance(db, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, balance.Version)

	_, err = NewSettlementService(db, catalog, nil).SettleDraw(context.Background(), draw.ID, games.Outcome{Number: 42})
	require.NoError(t, err)
	balance, err = loadBalance(db, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, balance.Version)
	requireDecimal(t, "780", balance.Amount)

	// a refused debit leaves the version alone
	_, err = NewWithdrawalService(db, nil).RequestWithdrawal(context.Background(), user.ID, dec("1000"), testAddress)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	balance, err = loadBalance(db, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, balance.Version)
}
