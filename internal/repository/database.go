// Package repository provides the issue and user stores, backed by GORM or by process memory.
package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/civicsync/civic-dashboard/internal/config"
	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// DB holds the database connection.
type DB struct {
	*gorm.DB
	driver string
}

// NewDB opens a database connection for the configured driver (postgres or sqlite).
func NewDB(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(postgresDSN(&cfg.Postgres))
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	// Configure GORM logger
	gormLogLevel := gormlogger.Warn
	if log.GetLogger().GetLevel() == 0 { // debug
		gormLogLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == config.DriverPostgres {
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("driver", cfg.Driver).
		Str("host", cfg.Postgres.Host).
		Str("database", cfg.Postgres.Database).
		Msg("Connected to database")

	return &DB{DB: db, driver: cfg.Driver}, nil
}

// NewDBFromGorm wraps an existing GORM handle, mainly for tests.
func NewDBFromGorm(db *gorm.DB) *DB {
	return &DB{DB: db, driver: config.DriverSQLite}
}

func postgresDSN(cfg *config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)
}

// AutoMigrate creates or updates tables for all models.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.Issue{},
		&models.User{},
	)
}

// lockForAppend serializes appends to table within tx so concurrent creates never read the
// same MAX(seq). SQLite already allows a single writer at a time.
func (db *DB) lockForAppend(tx *gorm.DB, table string) error {
	if db.driver != config.DriverPostgres {
		return nil
	}
	if err := tx.Exec(fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", table)).Error; err != nil {
		return fmt.Errorf("failed to lock %s: %w", table, err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database is healthy.
func (db *DB) Health() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
