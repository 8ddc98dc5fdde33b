package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
)

// ConnectPostgres opens a gorm handle on the hosted Postgres database.
// The schema is owned by the database migrations, autoMigrate is meant for
// local development only.
func ConnectPostgres(dsn string, autoMigrate bool) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get Postgres connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	if autoMigrate {
		if err := gdb.AutoMigrate(&models.Profile{}, &models.Invoice{}, &models.Quote{}, &models.Product{}, &models.EmailTemplate{}); err != nil {
			return nil, fmt.Errorf("failed to migrate Postgres schema: %w", err)
		}
	}

	log.Println("Successfully connected to Postgres!")
	return gdb, nil
}

// DisconnectPostgres closes the underlying connection pool.
func DisconnectPostgres(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get Postgres connection pool: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close Postgres connection: %w", err)
	}
	log.Println("Postgres connection closed.")
	return nil
}
