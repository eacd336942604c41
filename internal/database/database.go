package database

import (
	"fmt"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema and seeds the instrument catalog.
// Unlike a bot that rebuilds state on start, the journal is the system of
// record, so existing tables are never dropped.
func Migrate(db *gorm.DB, cfg *config.Config) error {
	err := db.AutoMigrate(
		&models.Account{},
		&models.Instrument{},
		&models.Trade{},
		&models.Challenge{},
		&models.ChecklistEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Populate the instrument catalog from the config. Existing rows win so
	// user edits survive restarts.
	for _, seed := range cfg.Catalog {
		if seed.Symbol == "" || seed.TickSize <= 0 || seed.ValuePerTick <= 0 {
			return fmt.Errorf("invalid catalog seed %q: tick_size and value_per_tick must be positive", seed.Symbol)
		}
		instrument := models.Instrument{
			Symbol:       seed.Symbol,
			Name:         seed.Name,
			AssetClass:   seed.AssetClass,
			Market:       seed.Market,
			TickSize:     seed.TickSize,
			ValuePerTick: seed.ValuePerTick,
			ContractSize: seed.ContractSize,
		}
		if err := db.FirstOrCreate(&instrument, models.Instrument{Symbol: seed.Symbol}).Error; err != nil {
			return fmt.Errorf("failed to seed instrument '%s': %w", seed.Symbol, err)
		}
	}

	return nil
}
