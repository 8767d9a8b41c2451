package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	Host string
	Port string

	DB    DBConfig
	Redis RedisConfig

	GameCatalogFile string

	BscScan BscScanConfig

	// WalletSealKey seals custodial private keys at rest. Nil stores them as generated.
	WalletSealKey *[32]byte

	DepositWatchInterval    time.Duration
	DepositWatchWindow      time.Duration
	DepositWatchConcurrency int
	SessionCleanupInterval  time.Duration

	LogFile      string
	LogMaxSizeMB int
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
	LogLevel    string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type BscScanConfig struct {
	APIURL        string
	APIKey        string
	TokenContract string
	TokenDecimals int32
}

func Load() (*Config, error) {
	cfg := &Config{
		Host:            getEnv("HOST", "127.0.0.1"),
		Port:            getEnv("PORT", "3000"),
		GameCatalogFile: os.Getenv("GAME_CATALOG_FILE"),
		LogFile:         os.Getenv("LOG_FILE"),
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		BscScan: BscScanConfig{
			APIURL:        getEnv("BSCSCAN_API_URL", "https://api.bscscan.com/api"),
			APIKey:        os.Getenv("BSCSCAN_API_KEY"),
			TokenContract: os.Getenv("USDT_CONTRACT"),
		},
	}

	var err error
	if cfg.DB.AutoMigrate, err = parseBool("DB_AUTO_MIGRATE", false); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = parseInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	decimals, err := parseInt("USDT_DECIMALS", 6)
	if err != nil {
		return nil, err
	}
	cfg.BscScan.TokenDecimals = int32(decimals)

	if cfg.DepositWatchInterval, err = parseDuration("DEPOSIT_WATCH_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.DepositWatchWindow, err = parseDuration("DEPOSIT_WATCH_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DepositWatchConcurrency, err = parseInt("DEPOSIT_WATCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.SessionCleanupInterval, err = parseDuration("SESSION_CLEANUP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.LogMaxSizeMB, err = parseInt("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}

	if raw := os.Getenv("WALLET_SEAL_KEY"); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != 32 {
			return nil, errors.New("WALLET_SEAL_KEY must be 64 hex characters")
		}
		var k [32]byte
		copy(k[:], key)
		cfg.WalletSealKey = &k
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrapf(err, "invalid value for %s", key)
	}
	return v, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value for %s", key)
	}
	return v, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value for %s", key)
	}
	return v, nil
}
