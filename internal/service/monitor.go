package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pool_watch/internal/domain"
	"pool_watch/internal/infra"
)

// Scheduling constants. Not configurable at runtime.
const (
	// CheckInterval is the period of the fetch-check-alert loop.
	CheckInterval = 60 * time.Second
	// compareTick is the granularity at which per-chat auto-compare
	// intervals are evaluated; actual firing follows each chat's own period.
	compareTick = 10 * time.Second
	// pruneInterval and snapshotRetention bound the append-only log.
	pruneInterval     = time.Hour
	snapshotRetention = 30 * 24 * time.Hour
)

// Monitor drives the two independent periodic loops: the global
// fetch-check-alert cycle and the fine-grained auto-compare tick. No failure
// inside a tick ever terminates a loop; everything is caught, logged and
// skipped until the next natural tick.
type Monitor struct {
	fetcher  domain.SnapshotSource
	store    domain.StatsStore
	notifier domain.Notifier
	subs     *Subscriptions
	auto     *AutoCompare
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor wires the scheduler over its collaborators.
func NewMonitor(fetcher domain.SnapshotSource, store domain.StatsStore, notifier domain.Notifier, subs *Subscriptions, auto *AutoCompare) *Monitor {
	return &Monitor{
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		subs:     subs,
		auto:     auto,
		logger:   slog.Default().With("module", "monitor"),
	}
}

// Start launches the check, auto-compare and retention loops.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(3)
	go m.runLoop(ctx, CheckInterval, "check", m.checkOnce)
	go m.runLoop(ctx, compareTick, "auto_compare", func(ctx context.Context) {
		m.compareOnce(ctx, time.Now())
	})
	go m.runLoop(ctx, pruneInterval, "prune", m.pruneOnce)

	m.logger.Info("Monitor started",
		slog.Duration("check_interval", CheckInterval),
		slog.Duration("compare_tick", compareTick),
	)
}

// Stop cancels the loops and waits for in-flight ticks to drain.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
		m.wg.Wait()
	}
}

func (m *Monitor) runLoop(ctx context.Context, period time.Duration, name string, tick func(context.Context)) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Loop panic recovered", slog.String("loop", name), slog.Any("panic", r))
		}
	}()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Loop stopped", slog.String("loop", name))
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// checkOnce runs one fetch-check-alert cycle: fetch all pools, persist,
// evaluate divergence, broadcast to subscribers. Within a cycle persistence
// happens before evaluation happens before dispatch.
func (m *Monitor) checkOnce(ctx context.Context) {
	infra.GlobalMetrics.RecordCheck()

	snapshots, err := m.fetcher.FetchAll(ctx)
	if err != nil {
		infra.GlobalMetrics.RecordFetchError()
		m.logger.Warn("Pool status check failed", slog.Any("error", err))
		m.broadcast(ctx, msgCheckFailed)
		return
	}

	if err := m.store.AppendSnapshots(snapshots); err != nil {
		// Detection still runs on the in-memory batch.
		m.logger.Error("Failed to persist snapshots", slog.Any("error", err))
	} else {
		infra.GlobalMetrics.RecordSnapshotsSaved(len(snapshots))
	}

	report := domain.Detect(snapshots)
	if !report.Diverged {
		return
	}

	m.logger.Warn("Block height divergence detected",
		slog.Uint64("spread", report.Spread),
		slog.Uint64("max_height", report.MaxHeight),
		slog.Uint64("min_height", report.MinHeight),
	)
	m.broadcast(ctx, alertMessage(snapshots))
}

// broadcast delivers text to every subscriber sequentially, in subscription
// order. A failed recipient is logged and skipped.
func (m *Monitor) broadcast(ctx context.Context, text string) {
	for _, chatID := range m.subs.ListAll() {
		if err := m.notifier.Send(ctx, chatID, text); err != nil {
			infra.GlobalMetrics.RecordDispatchError()
			m.logger.Warn("Dispatch failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
			continue
		}
		infra.GlobalMetrics.RecordAlertSent()
	}
}

// compareOnce evaluates every registered chat against its own interval and
// sends a comparison to those that are due. Per-entry failures do not affect
// other entries in the same tick.
func (m *Monitor) compareOnce(ctx context.Context, now time.Time) {
	for _, entry := range m.auto.DueEntries(now) {
		if err := m.sendComparison(ctx, entry.ChatID); err != nil {
			m.logger.Warn("Auto-compare failed",
				slog.Int64("chat_id", entry.ChatID), slog.Any("error", err))
		} else {
			infra.GlobalMetrics.RecordAutoCompare()
		}
		// Fired either way: there is no retry, the next firing follows the
		// chat's regular interval.
		if err := m.auto.MarkFired(entry.ChatID, now); err != nil {
			m.logger.Error("Failed to persist auto-compare settings",
				slog.Int64("chat_id", entry.ChatID), slog.Any("error", err))
		}
	}
}

func (m *Monitor) sendComparison(ctx context.Context, chatID int64) error {
	latest, err := m.store.LatestPerPool()
	if err != nil {
		return err
	}

	report, err := domain.Compare(latest)
	if err != nil {
		// Fewer than two pools reported within the hour: nothing to compare.
		return m.notifier.Send(ctx, chatID, msgNoHistory)
	}
	return m.notifier.Send(ctx, chatID, compareMessage(report))
}

// pruneOnce enforces the snapshot retention window.
func (m *Monitor) pruneOnce(context.Context) {
	n, err := m.store.PruneOlderThan(snapshotRetention)
	if err != nil {
		m.logger.Error("Snapshot prune failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		m.logger.Info("Pruned old snapshots", slog.Int64("rows", n))
	}
}
