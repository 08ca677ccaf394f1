package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Open connects GORM to PostgreSQL.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm.DB: %w", err)
	}
	configurePool(sqlDB, 10)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping postgres connection: %w", err)
	}
	return db, nil
}

// OpenSQL opens a database/sql handle. driver is "postgres" (lib/pq) or "sqlite" (modernc).
func OpenSQL(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", driver, err)
	}
	maxOpen := 10
	if driver == "sqlite" {
		maxOpen = 1
	}
	configurePool(db, maxOpen)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s connection: %w", driver, err)
	}
	return db, nil
}

func configurePool(db *sql.DB, maxOpen int) {
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxIdleConns(min(5, maxOpen))
	db.SetMaxOpenConns(maxOpen)
}
