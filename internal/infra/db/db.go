// Package db provides database and cache connection management.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/menuinzicht/backend/config"
	"github.com/menuinzicht/backend/internal/integration/persistence/model"
)

// sqlitePrefix selects the embedded SQLite driver, e.g. "sqlite://menuinzicht.db".
const sqlitePrefix = "sqlite://"

const pingTimeout = 2 * time.Second

// Database wraps the GORM database connection.
type Database struct {
	db     *gorm.DB
	driver string
}

// Open connects to the database named by cfg.URL: PostgreSQL by default, or a
// local SQLite file for sqlite:// URLs. The connection is verified before returning.
func Open(cfg *config.DatabaseConfig) (*Database, error) {
	dialector, driver := dialectorFor(cfg.URL)

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	database := &Database{db: gdb, driver: driver}
	if err := database.configurePool(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		return nil, err
	}

	slog.Info("Database connection established", "driver", driver)
	return database, nil
}

func dialectorFor(url string) (gorm.Dialector, string) {
	if strings.HasPrefix(url, sqlitePrefix) {
		return sqlite.Open(strings.TrimPrefix(url, sqlitePrefix)), "sqlite"
	}
	return postgres.Open(url), "postgres"
}

// configurePool applies the pool limits. SQLite gets a single connection
// because it serializes writers and an in-memory database lives per connection.
func (d *Database) configurePool(cfg *config.DatabaseConfig) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if d.driver == "sqlite" {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	slog.Debug("Database pool configured",
		"max_open_conns", maxOpen,
		"max_idle_conns", cfg.MaxIdleConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime,
	)
	return nil
}

// DB returns the underlying GORM database instance.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Driver returns "postgres" or "sqlite".
func (d *Database) Driver() string {
	return d.driver
}

// Ping verifies the connection.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", d.driver, err)
	}
	return nil
}

// HealthCheck reports whether the database answers a ping.
func (d *Database) HealthCheck() bool {
	return GormHealthCheck(d.db)()
}

// GormHealthCheck returns a probe for the health endpoint.
func GormHealthCheck(gdb *gorm.DB) func() bool {
	return func() bool {
		sqlDB, err := gdb.DB()
		if err != nil {
			return false
		}
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.Warn("Database health check failed", "error", err)
			return false
		}
		return true
	}
}

// Close closes the database connection.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for closing: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	slog.Info("Database connection closed")
	return nil
}

// Migrate creates or updates the tables of every persisted model.
func (d *Database) Migrate() error {
	if err := d.db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to migrate %s database: %w", d.driver, err)
	}
	return nil
}
