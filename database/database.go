package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/orders"
	"foodorder-api/internal/domain/stores"
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/domain/users"
)

// Models lists every table owned by the API, in dependency order.
func Models() []any {
	return []any{
		// core
		&users.User{},
		&stores.Store{},
		&stores.OpeningHour{},
		&subscriptions.Subscription{},

		// orders & billing
		&orders.Order{},
		&billing.Payment{},
		&billing.ProcessedEvent{},
	}
}

// InitDB opens the postgres pool and migrates the schema.
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database.InitDB: DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database.InitDB: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database.InitDB: pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("database.InitDB: migrate: %w", err)
	}
	return db, nil
}
