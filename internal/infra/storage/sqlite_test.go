package storage

import (
	"path/filepath"
	"testing"
	"time"

	"pool_watch/internal/domain"
)

func setupTestDB(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return s
}

// backdate rewrites a row's observation time, bypassing the append-only API.
func backdate(t *testing.T, s *Storage, name string, height uint64, at time.Time) {
	t.Helper()
	err := s.db.Model(&domain.PoolSnapshot{}).
		Where("name = ? AND height = ?", name, height).
		Update("created_at", at).Error
	if err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
}

func TestAppendAndLatestPerPool(t *testing.T) {
	s := setupTestDB(t)

	// Three observations for pool A at distinct times within the hour.
	for i, h := range []uint64{100, 101, 102} {
		if err := s.AppendSnapshots([]domain.PoolSnapshot{{Name: "A", Height: h, Hashrate: 1000, Miners: 5}}); err != nil {
			t.Fatalf("AppendSnapshots failed: %v", err)
		}
		backdate(t, s, "A", h, time.Now().Add(-time.Duration(3-i)*time.Minute))
	}

	rows, err := s.LatestPerPool()
	if err != nil {
		t.Fatalf("LatestPerPool failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want exactly 1 for pool A", len(rows))
	}
	if rows[0].Height != 102 {
		t.Errorf("Height = %d, want the most recent (102)", rows[0].Height)
	}
}

func TestLatestPerPool_WindowExcludesStaleRows(t *testing.T) {
	s := setupTestDB(t)

	s.AppendSnapshots([]domain.PoolSnapshot{{Name: "A", Height: 100}})
	s.AppendSnapshots([]domain.PoolSnapshot{{Name: "B", Height: 200}})
	backdate(t, s, "B", 200, time.Now().Add(-2*time.Hour))

	rows, err := s.LatestPerPool()
	if err != nil {
		t.Fatalf("LatestPerPool failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "A" {
		t.Errorf("pool with no observation in the last hour must be omitted, got %+v", rows)
	}
}

func TestLatestPerPool_MultiplePools(t *testing.T) {
	s := setupTestDB(t)

	s.AppendSnapshots([]domain.PoolSnapshot{
		{Name: "A", Height: 100},
		{Name: "B", Height: 112},
	})

	rows, err := s.LatestPerPool()
	if err != nil {
		t.Fatalf("LatestPerPool failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	seen := map[string]bool{}
	for _, r := range rows {
		if seen[r.Name] {
			t.Errorf("pool %s appears more than once", r.Name)
		}
		seen[r.Name] = true
	}
}

func TestRecentHistory_Empty(t *testing.T) {
	s := setupTestDB(t)

	rows, err := s.RecentHistory(5)
	if err != nil {
		t.Fatalf("RecentHistory on empty store must not error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestRecentHistory_Limit(t *testing.T) {
	s := setupTestDB(t)

	for _, name := range []string{"A", "B", "C"} {
		s.AppendSnapshots([]domain.PoolSnapshot{{Name: name, Height: 100}})
	}

	rows, err := s.RecentHistory(2)
	if err != nil {
		t.Fatalf("RecentHistory failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want limit of 2", len(rows))
	}
}

func TestAppend_AssignsObservationTime(t *testing.T) {
	s := setupTestDB(t)

	stale := domain.PoolSnapshot{Name: "A", Height: 100, CreatedAt: time.Now().Add(-48 * time.Hour)}
	if err := s.AppendSnapshots([]domain.PoolSnapshot{stale}); err != nil {
		t.Fatalf("AppendSnapshots failed: %v", err)
	}

	// The caller-supplied timestamp must be ignored: observedAt is assigned
	// at write time, so the row is inside the one-hour window.
	rows, err := s.LatestPerPool()
	if err != nil {
		t.Fatalf("LatestPerPool failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatal("row written just now must be inside the history window")
	}
}

func TestPruneOlderThan(t *testing.T) {
	s := setupTestDB(t)

	s.AppendSnapshots([]domain.PoolSnapshot{{Name: "A", Height: 100}})
	s.AppendSnapshots([]domain.PoolSnapshot{{Name: "A", Height: 101}})
	backdate(t, s, "A", 100, time.Now().Add(-40*24*time.Hour))

	n, err := s.PruneOlderThan(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneOlderThan failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}

	rows, _ := s.LatestPerPool()
	if len(rows) != 1 || rows[0].Height != 101 {
		t.Errorf("fresh row must survive pruning, got %+v", rows)
	}
}

func TestChatSettings_UpsertAndLoad(t *testing.T) {
	s := setupTestDB(t)

	first := domain.ChatSettings{ChatID: 7, AutoCompare: true, CompareInterval: 60_000, LastAutoCompare: 123}
	if err := s.UpsertChatSettings(first); err != nil {
		t.Fatalf("UpsertChatSettings failed: %v", err)
	}

	// Replace semantics: a second write fully overwrites the row.
	second := domain.ChatSettings{ChatID: 7, AutoCompare: false, CompareInterval: 300_000, LastAutoCompare: 456}
	if err := s.UpsertChatSettings(second); err != nil {
		t.Fatalf("UpsertChatSettings (replace) failed: %v", err)
	}

	all, err := s.LoadAllChatSettings()
	if err != nil {
		t.Fatalf("LoadAllChatSettings failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d rows, want 1 (chat_id is the primary key)", len(all))
	}
	if all[0] != second {
		t.Errorf("loaded %+v, want %+v", all[0], second)
	}
}
