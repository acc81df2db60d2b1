// Package database provides database connection and session management using GORM.
package database

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database wraps a GORM connection with lifecycle management.
type Database struct {
	db *gorm.DB
}

// NewDatabase opens (or creates) the SQLite database at the given path.
func NewDatabase(ctx context.Context, path string) (Database, error) {
	config := &gorm.Config{
		Logger: slogGormLogger{},
	}

	db, err := gorm.Open(sqlite.Open(path), config)
	if err != nil {
		return Database{}, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return Database{}, fmt.Errorf("get underlying db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Database{}, fmt.Errorf("ping database: %w", err)
	}

	return Database{db: db}, nil
}

// Session returns a GORM session with the given context.
func (d Database) Session(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// GORM returns the raw GORM handle for migrations.
func (d Database) GORM() *gorm.DB {
	return d.db
}

// Close closes the database connection.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
