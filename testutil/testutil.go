// Package testutil opens throwaway catalog databases and seeds records for tests.
package testutil

import (
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/camden-git/librarycatalog/database"
	"github.com/camden-git/librarycatalog/logger"
)

var dbSeq atomic.Int64

var nameCleaner = strings.NewReplacer("/", "_", " ", "_", "#", "_")

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// DB opens a private in-memory sqlite database with the catalog schema.
// The database is dropped when the test finishes.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := nameCleaner.Replace(tb.Name())
	dsn := "file:" + name + "_" + strconv.FormatInt(dbSeq.Add(1), 10) + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), database.NewGormConfig("silent", logger.Nop()))
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("get sql.DB: %v", err)
	}
	// one connection keeps the in-memory database alive and serializes access
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrateModels(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
