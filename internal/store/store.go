// Package store persists the signal history in SQLite via Gorm.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the durable signal history. Appends are atomic single-row
// inserts; WAL keeps concurrent readers (dashboard, viewer) happy.
type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store: database path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open failed: %w", err)
	}
	if err := db.AutoMigrate(&SignalRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append inserts one history row. Existing rows are never touched.
func (s *Store) Append(ctx context.Context, row *SignalRow) error {
	if row == nil {
		return fmt.Errorf("store: nil row")
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("store: append failed: %w", err)
	}
	return nil
}

// Query returns rows with from <= timestamp < to, ascending by timestamp.
func (s *Store) Query(ctx context.Context, from, to time.Time) ([]SignalRow, error) {
	var rows []SignalRow
	err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from.UTC(), to.UTC()).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: query failed: %w", err)
	}
	return rows, nil
}

// Recent returns the newest rows, newest first, for the viewer/dashboard.
func (s *Store) Recent(ctx context.Context, limit int) ([]SignalRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []SignalRow
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: recent failed: %w", err)
	}
	return rows, nil
}
