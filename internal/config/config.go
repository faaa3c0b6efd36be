// Package config loads server settings from FAMDASH_* environment
// variables, optionally preloaded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/famdash/internal/model"
)

const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	Store        string
	DBPath       string
	PollInterval time.Duration

	FirestoreProject    string
	FirebaseCredentials string

	Household model.Household
	Location  *time.Location
}

// Load reads the environment. Files in envFiles are loaded first without
// overriding variables already set; a missing file is skipped.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
		slog.Debug("loaded env file", "path", f)
	}

	cfg := Config{
		Port:                getenv("FAMDASH_PORT", "8080"),
		LogLevel:            os.Getenv("FAMDASH_LOG_LEVEL"),
		LogFormat:           getenv("FAMDASH_LOG_FORMAT", "text"),
		Store:               strings.ToLower(getenv("FAMDASH_STORE", StoreSQLite)),
		DBPath:              getenv("FAMDASH_DB_PATH", "famdash.db"),
		FirestoreProject:    os.Getenv("FAMDASH_FIRESTORE_PROJECT"),
		FirebaseCredentials: os.Getenv("FAMDASH_FIREBASE_CREDENTIALS"),
	}

	switch cfg.Store {
	case StoreSQLite, StoreFirestore:
	default:
		return Config{}, fmt.Errorf("FAMDASH_STORE: unknown store %q", cfg.Store)
	}

	poll, err := time.ParseDuration(getenv("FAMDASH_POLL_INTERVAL", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("FAMDASH_POLL_INTERVAL: %w", err)
	}
	if poll < 0 {
		return Config{}, fmt.Errorf("FAMDASH_POLL_INTERVAL: must not be negative")
	}
	cfg.PollInterval = poll

	members := model.DefaultMembers
	if raw := os.Getenv("FAMDASH_MEMBERS"); strings.TrimSpace(raw) != "" {
		members = strings.Split(raw, ",")
	}
	cfg.Household = model.NewHousehold(members...)
	if cfg.Household.Len() == 0 {
		return Config{}, errors.New("FAMDASH_MEMBERS: no members")
	}

	cfg.Location = time.Local
	if tz := os.Getenv("FAMDASH_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("FAMDASH_TZ: %w", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
