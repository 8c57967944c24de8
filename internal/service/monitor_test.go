package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pool_watch/internal/domain"
)

func newTestMonitor(t *testing.T, fetcher domain.SnapshotSource) (*Monitor, *fakeNotifier, domain.StatsStore, *Subscriptions, *AutoCompare) {
	t.Helper()
	store := testStore(t)
	notifier := newFakeNotifier()
	subs := NewSubscriptions()
	auto := NewAutoCompare(store)
	m := NewMonitor(fetcher, store, notifier, subs, auto)
	return m, notifier, store, subs, auto
}

func TestMonitor_CheckAlertsSubscribersOnDivergence(t *testing.T) {
	fetcher := &fakeFetcher{snapshots: []domain.PoolSnapshot{
		{Name: "A", Height: 100, Hashrate: 1000, Miners: 5, LastBlockFound: 1700000000},
		{Name: "B", Height: 112, Hashrate: 2000, Miners: 9, LastBlockFound: 1700000300},
	}}
	m, notifier, store, subs, _ := newTestMonitor(t, fetcher)
	subs.Subscribe(10)
	subs.Subscribe(20)

	m.checkOnce(context.Background())

	msgs := notifier.messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want one per subscriber", len(msgs))
	}
	if msgs[0].ChatID != 10 || msgs[1].ChatID != 20 {
		t.Errorf("dispatch order %d,%d, want registry insertion order 10,20", msgs[0].ChatID, msgs[1].ChatID)
	}
	if !strings.Contains(msgs[0].Text, "⚠️ 풀 간 블록 높이 차이가 감지되었습니다!") {
		t.Errorf("alert text = %q", msgs[0].Text)
	}

	// Persistence happened before dispatch.
	rows, err := store.LatestPerPool()
	if err != nil {
		t.Fatalf("LatestPerPool failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("persisted %d pools, want 2", len(rows))
	}
}

func TestMonitor_CheckStaysQuietWhenStable(t *testing.T) {
	fetcher := &fakeFetcher{snapshots: []domain.PoolSnapshot{
		{Name: "A", Height: 100},
		{Name: "B", Height: 105},
	}}
	m, notifier, store, subs, _ := newTestMonitor(t, fetcher)
	subs.Subscribe(10)

	m.checkOnce(context.Background())

	if len(notifier.messages()) != 0 {
		t.Error("no alert expected for spread below the threshold")
	}
	// Snapshots are persisted regardless of divergence.
	rows, _ := store.LatestPerPool()
	if len(rows) != 2 {
		t.Errorf("persisted %d pools, want 2", len(rows))
	}
}

func TestMonitor_CheckFetchFailureNotifiesSubscribers(t *testing.T) {
	fetcher := &fakeFetcher{err: &domain.FetchError{Pool: "A", Err: errors.New("timeout")}}
	m, notifier, store, subs, _ := newTestMonitor(t, fetcher)
	subs.Subscribe(10)

	m.checkOnce(context.Background())

	msgs := notifier.messages()
	if len(msgs) != 1 || msgs[0].Text != msgCheckFailed {
		t.Fatalf("messages = %+v, want the generic failure notice", msgs)
	}
	rows, _ := store.LatestPerPool()
	if len(rows) != 0 {
		t.Error("nothing must be persisted for a failed batch")
	}
}

func TestMonitor_BroadcastSkipsFailedRecipient(t *testing.T) {
	fetcher := &fakeFetcher{snapshots: []domain.PoolSnapshot{
		{Name: "A", Height: 100},
		{Name: "B", Height: 115},
	}}
	m, notifier, _, subs, _ := newTestMonitor(t, fetcher)
	subs.Subscribe(10)
	subs.Subscribe(20)
	subs.Subscribe(30)
	notifier.failFor[20] = true

	m.checkOnce(context.Background())

	msgs := notifier.messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d deliveries, want 2 (failed recipient skipped)", len(msgs))
	}
	if msgs[0].ChatID != 10 || msgs[1].ChatID != 30 {
		t.Errorf("delivered to %d,%d, want 10,30", msgs[0].ChatID, msgs[1].ChatID)
	}
}

func TestMonitor_CompareOnceFiresDueEntries(t *testing.T) {
	fetcher := &fakeFetcher{}
	m, notifier, store, _, auto := newTestMonitor(t, fetcher)

	store.AppendSnapshots([]domain.PoolSnapshot{
		{Name: "A", Height: 100, LastBlockFound: 1700000000},
		{Name: "B", Height: 112, LastBlockFound: 1700000300},
	})

	auto.Toggle(7) // enabled, never fired → due
	now := time.Now()

	m.compareOnce(context.Background(), now)

	msgs := notifier.messages()
	if len(msgs) != 1 || msgs[0].ChatID != 7 {
		t.Fatalf("messages = %+v, want one comparison to chat 7", msgs)
	}
	if !strings.Contains(msgs[0].Text, "📊 풀 높이 및 블록타임 비교") {
		t.Errorf("comparison text = %q", msgs[0].Text)
	}

	// Fired entries are excluded until their interval elapses again.
	if len(auto.DueEntries(now)) != 0 {
		t.Error("entry must not be due right after firing")
	}

	m.compareOnce(context.Background(), now)
	if len(notifier.messages()) != 1 {
		t.Error("second tick must not re-fire the entry")
	}
}

func TestMonitor_CompareOnceFailureDoesNotBlockOthers(t *testing.T) {
	fetcher := &fakeFetcher{}
	m, notifier, store, _, auto := newTestMonitor(t, fetcher)

	store.AppendSnapshots([]domain.PoolSnapshot{
		{Name: "A", Height: 100},
		{Name: "B", Height: 101},
	})

	auto.Toggle(7)
	auto.Toggle(8)
	notifier.failFor[7] = true

	m.compareOnce(context.Background(), time.Now())

	msgs := notifier.messages()
	if len(msgs) != 1 || msgs[0].ChatID != 8 {
		t.Fatalf("messages = %+v, want delivery to chat 8 despite chat 7 failing", msgs)
	}
	// Both entries are marked fired: there is no per-entry retry.
	if len(auto.DueEntries(time.Now())) != 0 {
		t.Error("failed entry must still be marked fired")
	}
}

func TestMonitor_CompareOnceEmptyStore(t *testing.T) {
	fetcher := &fakeFetcher{}
	m, notifier, _, _, auto := newTestMonitor(t, fetcher)

	auto.Toggle(7)
	m.compareOnce(context.Background(), time.Now())

	msgs := notifier.messages()
	if len(msgs) != 1 || msgs[0].Text != msgNoHistory {
		t.Fatalf("messages = %+v, want the no-history notice", msgs)
	}
}

func TestMonitor_StartStop(t *testing.T) {
	fetcher := &fakeFetcher{snapshots: []domain.PoolSnapshot{{Name: "A", Height: 100}}}
	m, _, _, _, _ := newTestMonitor(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Start(ctx)
	// Stop must not hang even if no tick ever fired.
	m.Stop()
}
