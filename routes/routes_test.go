package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"lottery/chain"
	"lottery/database"
	"lottery/games"
	"lottery/models"
	"lottery/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type confirmAll struct{}

func (confirmAll) CheckDeposit(ctx context.Context, address string, expected decimal.Decimal) chain.Status {
	return chain.Confirmed
}

type testServer struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	catalog := games.Default()
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedGameTypes(db, catalog))

	app := fiber.New()
	Setup(app, db, NewServices(db, catalog, confirmAll{}, wallet.NewGenerator(nil), nil))
	return &testServer{t: t, app: app, db: db}
}

// login creates a user with a live session and returns the session ID.
func (s *testServer) login(name, balance string, admin bool) (models.User, string) {
	s.t.Helper()
	u := models.User{Username: name, Balance: decimal.RequireFromString(balance), IsAdmin: admin}
	require.NoError(s.t, s.db.Create(&u).Error)
	session := models.Session{UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(s.t, s.db.Create(&session).Error)
	return u, session.SID
}

func (s *testServer) do(method, path, sid string, body any) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set("X-Session-ID", sid)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestSessionRequired(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodGet, "/user/balance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "SESSION_REQUIRED", env.Message)

	status, env = s.do(http.MethodGet, "/user/balance", "no-such-session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_SESSION", env.Message)

	u := models.User{Username: "late", Balance: decimal.Zero}
	require.NoError(t, s.db.Create(&u).Error)
	expired := models.Session{UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, s.db.Create(&expired).Error)
	status, env = s.do(http.MethodGet, "/user/balance", expired.SID, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "SESSION_EXPIRED", env.Message)

	_, player := s.login("ann", "1", false)
	status, env = s.do(http.MethodGet, "/admin/dashboard", player, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ADMIN_ONLY", env.Message)
}

func TestDrawLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, operator := s.login("op", "0", true)
	_, player := s.login("ann", "100", false)

	status, env := s.do(http.MethodPost, "/admin/draws", operator, fiber.Map{
		"game_type_code": "NUMBER",
		"draw_time":      time.Now().Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	created := decodeData[models.Draw](t, env)
	assert.Equal(t, "SP-1001", created.Code)

	_, env = s.do(http.MethodGet, "/games/number/draw", player, nil)
	require.True(t, env.Success)
	open := decodeData[models.Draw](t, env)
	assert.Equal(t, created.ID, open.ID)

	status, env = s.do(http.MethodPost, "/games/NUMBER/bets", player, fiber.Map{
		"draw_id":       open.ID,
		"chosen_number": 42,
		"amount":        "10",
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(http.MethodPost, "/games/NUMBER/bets", player, fiber.Map{
		"draw_id": open.ID,
		"amount":  "10",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_NUMBER", env.Message)

	_, env = s.do(http.MethodPost, "/games/NUMBER/bets", player, fiber.Map{
		"draw_id":       open.ID,
		"chosen_number": 7,
		"amount":        "100",
	})
	assert.Equal(t, "INSUFFICIENT_BALANCE", env.Message)

	closePath := "/admin/draws/" + strconv.Itoa(int(open.ID)) + "/close"
	status, env = s.do(http.MethodPost, closePath, operator, fiber.Map{"winning_number": 42})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Draw closed successfully", env.Message)

	status, env = s.do(http.MethodPost, closePath, operator, fiber.Map{"winning_number": 7})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Draw already closed", env.Message)

	_, env = s.do(http.MethodGet, "/user/balance", player, nil)
	balance := decodeData[struct {
		Balance decimal.Decimal `json:"balance"`
	}](t, env)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(790)), balance.Balance.String())

	_, env = s.do(http.MethodGet, "/user/bets", player, nil)
	bets := decodeData[[]models.Bet](t, env)
	require.Len(t, bets, 1)
	assert.Equal(t, models.BetWon, bets[0].Status)

	_, env = s.do(http.MethodGet, "/games/NUMBER/draw", player, nil)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))

	_, env = s.do(http.MethodGet, "/admin/dashboard", operator, nil)
	stats := decodeData[map[string]int64](t, env)
	assert.Equal(t, int64(2), stats["user_count"])
	assert.Equal(t, int64(1), stats["bet_count"])

	_, env = s.do(http.MethodGet, "/admin/draws", operator, nil)
	draws := decodeData[[]map[string]any](t, env)
	require.Len(t, draws, 1)
	assert.Equal(t, "NUMBER", draws[0]["game_type_code"])
	assert.Equal(t, "42", draws[0]["result"])
}

func TestAdminRejectsBadDraws(t *testing.T) {
	s := newTestServer(t)
	_, operator := s.login("op", "0", true)

	_, env := s.do(http.MethodPost, "/admin/draws", operator, fiber.Map{"game_type_code": "KENO", "draw_time": time.Now()})
	assert.Equal(t, "INVALID_GAME_TYPE", env.Message)
	_, env = s.do(http.MethodPost, "/admin/draws", operator, fiber.Map{"game_type_code": "COLOR"})
	assert.Equal(t, "INVALID_DRAW_TIME", env.Message)
	_, env = s.do(http.MethodPost, "/admin/draws/77/close", operator, fiber.Map{"winning_color": "RED"})
	assert.Equal(t, "DRAW_NOT_FOUND", env.Message)
}

func TestWalletOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, player := s.login("ann", "0", false)

	status, env := s.do(http.MethodPost, "/wallet/generate", player, fiber.Map{"amount": "50"})
	require.Equal(t, http.StatusOK, status, env.Message)
	intent := decodeData[struct {
		WalletAddress string `json:"wallet_address"`
	}](t, env)
	require.True(t, wallet.IsAddress(intent.WalletAddress))

	_, env = s.do(http.MethodPost, "/wallet/check", player, fiber.Map{"address": intent.WalletAddress})
	assert.Equal(t, "Deposit credited", env.Message)
	_, env = s.do(http.MethodPost, "/wallet/check", player, fiber.Map{"address": intent.WalletAddress})
	assert.Equal(t, "Deposit already credited", env.Message)

	status, env = s.do(http.MethodPost, "/wallet/withdraw", player, fiber.Map{
		"amount":         "20",
		"wallet_address": intent.WalletAddress,
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	_, env = s.do(http.MethodPost, "/wallet/withdraw", player, fiber.Map{
		"amount":         "31",
		"wallet_address": intent.WalletAddress,
	})
	assert.Equal(t, "INSUFFICIENT_BALANCE", env.Message)

	_, env = s.do(http.MethodGet, "/user/balance", player, nil)
	balance := decodeData[struct {
		Balance decimal.Decimal `json:"balance"`
	}](t, env)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(30)), balance.Balance.String())
}
