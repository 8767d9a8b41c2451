package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"lottery/games"
	"lottery/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DrawService struct {
	db      *gorm.DB
	catalog *games.Catalog
}

func NewDrawService(db *gorm.DB, catalog *games.Catalog) *DrawService {
	return &DrawService{db: db, catalog: catalog}
}

// CreateDraw opens a new draw for gameCode. The game-type row stays locked while the
// next code is derived and the draw is inserted, so concurrent creations queue up
// instead of racing for the same code.
func (s *DrawService) CreateDraw(ctx context.Context, gameCode string, drawTime time.Time) (*models.Draw, error) {
	game, ok := s.catalog.Lookup(gameCode)
	if !ok {
		return nil, ErrInvalidGameType
	}
	if drawTime.IsZero() {
		return nil, ErrInvalidDrawTime
	}

	var draw models.Draw
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gameType models.GameType
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", game.Code).
			First(&gameType).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidGameType
			}
			return errors.Wrapf(err, "lock game type %s", game.Code)
		}

		code, err := nextDrawCode(tx, game, gameType.ID)
		if err != nil {
			return err
		}

		draw = models.Draw{
			GameTypeID: gameType.ID,
			Code:       code,
			DrawTime:   drawTime,
		}
		if err := tx.Create(&draw).Error; err != nil {
			return errors.Wrapf(err, "create draw %s", code)
		}
		draw.GameType = gameType
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &draw, nil
}

// NextDrawCode derives the code the next draw of gameCode would get. It must run on the
// transaction that inserts that draw.
func NextDrawCode(tx *gorm.DB, catalog *games.Catalog, gameCode string) (string, error) {
	game, ok := catalog.Lookup(gameCode)
	if !ok {
		return "", ErrInvalidGameType
	}
	var gameType models.GameType
	err := tx.Select("id").Where("code = ?", game.Code).First(&gameType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidGameType
	}
	if err != nil {
		return "", errors.Wrapf(err, "load game type %s", game.Code)
	}
	return nextDrawCode(tx, game, gameType.ID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// nextDrawCode looks at the game type's most recently created code under its prefix.
// Creation order is used rather than string order so SP-999 never outranks SP-1000.
func nextDrawCode(tx *gorm.DB, game games.Game, gameTypeID uint) (string, error) {
	var last models.Draw
	err := tx.Unscoped().
		Select("id", "code").
		Where("game_type_id = ?", gameTypeID).
		Where(`code LIKE ? ESCAPE '\'`, likeEscaper.Replace(game.DrawPrefix)+"%").
		Order("created_at DESC").
		Order("id DESC").
		Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.DrawPrefix + strconv.Itoa(game.DrawStart), nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "find last draw code for %s", game.DrawPrefix)
	}

	n, err := strconv.Atoi(strings.TrimPrefix(last.Code, game.DrawPrefix))
	if err != nil || n < 0 {
		return "", errors.Wrapf(ErrMalformedDrawCode, "draw %d has code %q", last.ID, last.Code)
	}
	return game.DrawPrefix + strconv.Itoa(n+1), nil
}

// OpenDraw returns the earliest scheduled draw of gameCode still taking bets, or nil.
func (s *DrawService) OpenDraw(ctx context.Context, gameCode string) (*models.Draw, error) {
	game, ok := s.catalog.Lookup(gameCode)
	if !ok {
		return nil, ErrInvalidGameType
	}

	var draw models.Draw
	err := s.db.WithContext(ctx).
		Preload("GameType").
		Where("game_type_id = (?)", s.db.Model(&models.GameType{}).Select("id").Where("code = ?", game.Code)).
		Where("is_closed = ?", false).
		Order("draw_time ASC").
		Order("id ASC").
		Take(&draw).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find open draw for %s", game.Code)
	}
	return &draw, nil
}

// ListDraws returns every draw with its game type, latest draw time first.
func (s *DrawService) ListDraws(ctx context.Context) ([]models.Draw, error) {
	var draws []models.Draw
	err := s.db.WithContext(ctx).
		Preload("GameType").
		Order("draw_time DESC").
		Find(&draws).Error
	if err != nil {
		return nil, errors.Wrap(err, "list draws")
	}
	return draws, nil
}

type DashboardStats struct {
	Users int64 `json:"user_count"`
	Bets  int64 `json:"bet_count"`
}

func (s *DrawService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, errors.Wrap(err, "count users")
	}
	if err := db.Model(&models.Bet{}).Count(&stats.Bets).Error; err != nil {
		return nil, errors.Wrap(err, "count bets")
	}
	return &stats, nil
}
