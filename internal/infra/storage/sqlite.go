package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pool_watch/internal/domain"
)

// historyWindow bounds every "latest per pool" query: observations older
// than this are invisible to status history.
const historyWindow = time.Hour

// Storage persists pool snapshots and chat settings in SQLite (pure Go driver).
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path and migrates
// the schema.
func NewStorage(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.PoolSnapshot{}, &domain.ChatSettings{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Snapshot log (append-only)
// ======================================================================================

// AppendSnapshots writes each snapshot as its own row, assigning the id and
// observation timestamp at write time. Inserts are independent: a failed row
// does not roll back rows already written; the first error is reported.
func (s *Storage) AppendSnapshots(snapshots []domain.PoolSnapshot) error {
	var firstErr error
	for i := range snapshots {
		row := snapshots[i]
		row.ID = 0
		row.CreatedAt = time.Time{} // assigned by gorm on insert
		if err := s.db.Create(&row).Error; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LatestPerPool returns, for each pool with at least one observation in the
// last hour, its most recent row. Pools quiet for the whole window are
// silently omitted.
func (s *Storage) LatestPerPool() ([]domain.PoolSnapshot, error) {
	return s.latestSince(time.Now().Add(-historyWindow), -1)
}

// RecentHistory is LatestPerPool capped to limit rows, newest first.
func (s *Storage) RecentHistory(limit int) ([]domain.PoolSnapshot, error) {
	return s.latestSince(time.Now().Add(-historyWindow), limit)
}

// latestSince picks the newest row per distinct pool name observed after
// cutoff. Ties on the exact same timestamp are broken by row id.
// limit < 0 means no cap (SQLite's LIMIT -1).
func (s *Storage) latestSince(cutoff time.Time, limit int) ([]domain.PoolSnapshot, error) {
	var rows []domain.PoolSnapshot
	err := s.db.Raw(`
		SELECT id, name, height, hashrate, miners, last_block_found, created_at FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY name ORDER BY created_at DESC, id DESC) AS rn
			FROM pool_stats
			WHERE created_at >= ?
		)
		WHERE rn = 1
		ORDER BY created_at DESC
		LIMIT ?`, cutoff, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("latest per pool: %w", err)
	}
	return rows, nil
}

// PruneOlderThan deletes snapshot rows older than age and reports how many
// were removed. Chat settings are never pruned.
func (s *Storage) PruneOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	res := s.db.Where("created_at < ?", cutoff).Delete(&domain.PoolSnapshot{})
	return res.RowsAffected, res.Error
}

// ======================================================================================
// Chat settings
// ======================================================================================

// UpsertChatSettings fully overwrites the row for the settings' chat id.
func (s *Storage) UpsertChatSettings(settings domain.ChatSettings) error {
	return s.db.Save(&settings).Error
}

// LoadAllChatSettings scans the whole settings table. Used once at startup
// to seed the in-memory registry.
func (s *Storage) LoadAllChatSettings() ([]domain.ChatSettings, error) {
	var all []domain.ChatSettings
	err := s.db.Find(&all).Error
	return all, err
}
