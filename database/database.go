package database

import (
	"log"
	"strings"

	"lottery/config"
	"lottery/games"
	"lottery/models"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	log.Println("✅ Connected to database")

	if cfg.AutoMigrate {
		log.Println("🟡 Starting auto-migration...")
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("✅ Auto migration completed")
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.GameType{},
		&models.Draw{},
		&models.Bet{},
		&models.CryptoAddress{},
		&models.CryptoTransaction{},
		&models.WithdrawalRequest{},
	); err != nil {
		return errors.Wrap(err, "auto-migrate database")
	}
	return nil
}

// SeedGameTypes upserts one game_types row per catalog entry, keyed by code.
func SeedGameTypes(db *gorm.DB, catalog *games.Catalog) error {
	for _, g := range catalog.Games() {
		row := models.GameType{Code: g.Code, Name: g.Name}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return errors.Wrapf(err, "seed game type %s", g.Code)
		}
	}
	log.Printf("✅ Seed completed: %d game types synced", len(catalog.Games()))
	return nil
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
