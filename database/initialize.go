package database

import (
	"fmt"
	"os"

	"notes-app/config"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeDatabase opens the configured database and applies migrations
func InitializeDatabase(cfg config.Config) *sqlx.DB {
	dbConn, err := Open(cfg)
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err), zap.String("driver", cfg.DBDriver))
		os.Exit(1)
	}

	err = migrations.Migrate(dbConn, cfg.MigrationsDir)
	if err != nil {
		logger.Error("Error while running migration", zap.Error(err), zap.String("dir", cfg.MigrationsDir))
		os.Exit(1)
	}

	logger.Info("Database initialized successfully", zap.String("driver", cfg.DBDriver))
	return dbConn
}

// Open connects without migrating.
// go-utils builds MySQL DSNs from host/user fields, so MySQL is opened here
// with the caller's DSN instead.
func Open(cfg config.Config) (*sqlx.DB, error) {
	if cfg.DBDriver == "mysql" {
		dsn, err := DataSourceName(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		dbConn, err := sqlx.Connect(cfg.DBDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		return dbConn, nil
	}

	dbConn := db.GetDBConnection(db.DatabaseConfig{
		DRIVER: cfg.DBDriver,
		DB:     cfg.DBDSN,
	})
	// one writer at a time; avoids "database is locked" under concurrent requests
	dbConn.SetMaxOpenConns(1)
	return dbConn, nil
}

// DataSourceName normalizes a DSN for driver.
// MySQL must report matched rows, not changed rows, so that renaming a
// subject to its current name still counts as owned.
func DataSourceName(driver, dsn string) (string, error) {
	if driver != "mysql" {
		return dsn, nil
	}
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	mc.ClientFoundRows = true
	mc.MultiStatements = true // migrations hold several statements per file
	return mc.FormatDSN(), nil
}
