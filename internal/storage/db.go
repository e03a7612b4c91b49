package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"funny-video/internal/appdirs"
	"funny-video/internal/types"
	"funny-video/log"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB
var appDirsResolver = appdirs.Resolve

// sqlite serialises writers; run progress is saved from several workers at
// once, so waiting on the lock beats failing with SQLITE_BUSY.
const sqliteParams = "?_journal_mode=WAL&_busy_timeout=5000"

// InitDB opens the run database under the cache dir and stores it in DB.
func InitDB() error {
	dbPath, err := resolveDBPath()
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	db, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	DB = db
	log.GetLogger().Info("数据库初始化完成", zap.String("path", dbPath))
	return nil
}

// OpenDB opens (creating if needed) the sqlite file at dbPath and migrates
// the run and video tables.
func OpenDB(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath+sqliteParams), &gorm.Config{Logger: gormLogger()})
	if err != nil {
		return nil, fmt.Errorf("connect database %s: %w", dbPath, err)
	}
	if err = db.AutoMigrate(&types.RunRecord{}, &types.VideoRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// gormWriter forwards gorm's printf style output to the zap logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.GetLogger().Warn("gorm", zap.String("detail", fmt.Sprintf(format, args...)))
}

func gormLogger() logger.Interface {
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func resolveDBPath() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.DBPath(), nil
}
