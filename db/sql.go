// db/sql.go
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	logger "github.com/dev-mohitbeniwal/themis/logging"
)

const memoryDSN = ":memory:"

// SQLOptions tunes the connection pool behind a gorm handle.
type SQLOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Tracing         bool
}

// OpenSQL opens a gorm handle for url. Supported schemes are
// sqlite://<path>, sqlite://:memory: and postgres:// (or postgresql://).
func OpenSQL(url string, opts SQLOptions) (*gorm.DB, error) {
	dialector, dbName, memory, err := dialectorFor(url)
	if err != nil {
		return nil, err
	}

	gormLogger := gorm_logger.New(
		zap.NewStdLog(logger.Log),
		gorm_logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  gorm_logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbName, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access %s pool: %w", dbName, err)
	}
	switch {
	case memory:
		// every pooled connection would otherwise get its own empty database
		sqlDB.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if opts.Tracing {
		if err := gdb.Use(tracing.NewPlugin(tracing.WithDBName(dbName))); err != nil {
			return nil, fmt.Errorf("failed to set up tracing plugin: %w", err)
		}
	}

	logger.Info("Connected to SQL database", zap.String("driver", dbName))
	return gdb, nil
}

func dialectorFor(url string) (gorm.Dialector, string, bool, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" || path == memoryDSN {
			return sqlite.Open("file::memory:?_foreign_keys=on"), "sqlite", true, nil
		}
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); err != nil {
			return nil, "", false, fmt.Errorf("sqlite directory %q does not exist: %w", dir, err)
		}
		return sqlite.Open(path + "?_foreign_keys=on"), "sqlite", false, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), "postgres", false, nil
	default:
		return nil, "", false, fmt.Errorf("unsupported database url %q", url)
	}
}

// CloseSQL releases the pool behind gdb.
func CloseSQL(gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing SQL connection", zap.Error(err))
	}
}
