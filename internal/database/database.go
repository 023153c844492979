// Package database opens the relational backend used when STORAGE_TYPE
// names a SQL driver.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
)

func (d Driver) Valid() bool {
	switch d {
	case DriverSQLite, DriverMySQL, DriverPostgres:
		return true
	}
	return false
}

func dialector(d Driver, dsn string) (gorm.Dialector, error) {
	switch d {
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d)
	}
}

// Open connects and pings. SQL statements are logged at debug level
// through slog.
func Open(ctx context.Context, d Driver, dsn string) (*gorm.DB, error) {
	dial, err := dialector(d, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.New(slogWriter{}, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s connection pool: %w", d, err)
	}
	if d == DriverSQLite {
		// One writer at a time; concurrent sqlite writes fail with "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", d, err)
	}
	slog.InfoContext(ctx, "database connected", "driver", d)
	return db, nil
}

// OpenMemory returns a private in-memory sqlite database.
func OpenMemory(ctx context.Context, name string) (*gorm.DB, error) {
	return Open(ctx, DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type slogWriter struct{}

func (slogWriter) Printf(format string, args ...any) {
	slog.Warn(fmt.Sprintf(format, args...), "component", "gorm")
}

// CivilDate maps a calendar day to UTC midnight for storage, so that the
// day survives drivers that normalise time zones.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InLocation maps a stored day back to midnight in loc.
func InLocation(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
