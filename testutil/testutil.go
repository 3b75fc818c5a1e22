// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
)

var loggerOnce sync.Once

// InitLogger initializes the go-utils logger once; migrations log through it
func InitLogger() {
	loggerOnce.Do(func() {
		logger.Init(logger.LoggerConfig{
			CallerKey:  "file",
			TimeKey:    "timestamp",
			CallerSkip: 1,
		})
	})
}

// NewDB returns an in-memory SQLite database migrated the same way the server migrates
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	InitLogger()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// each :memory: connection is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := migrations.Migrate(db, MigrationsDir()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// MigrationsDir is the absolute path of the sqlite3 migrations
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "database", "migrations", "sqlite3")
}

// NewCache returns the go-utils in-memory cache, closed when the test ends
func NewCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New(cache.Config{Type: "memory"})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}
