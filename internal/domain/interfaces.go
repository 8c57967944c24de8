package domain

import (
	"context"
	"time"
)

// Inbound chat actions. Text commands and menu buttons carry the same
// semantics, so both funnel into these.
const (
	ActionStart           = "start"
	ActionStop            = "stop"
	ActionMonitor         = "monitor"
	ActionStatus          = "status"
	ActionCompare         = "compare"
	ActionHistory         = "history"
	ActionSettings        = "settings"
	ActionMenu            = "menu"
	ActionToggleCompare   = "settings:toggle"
	ActionCompareInterval = "settings:interval"
)

// Command is one inbound action from the chat platform.
type Command struct {
	ChatID int64
	Action string
	Arg    string // interval selections carry the chosen period in ms
}

// MenuButton is one platform-neutral inline button; Data round-trips as the
// callback action.
type MenuButton struct {
	Text string
	Data string
}

// Menu is a button grid, one inner slice per row.
type Menu [][]MenuButton

// Notifier delivers outbound plain-text messages to a chat session.
// Delivery may fail per recipient; callers decide whether to continue.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64, text string, menu Menu) error
}

// SnapshotSource fetches a point-in-time snapshot from every configured
// pool, all-or-nothing.
type SnapshotSource interface {
	FetchAll(ctx context.Context) ([]PoolSnapshot, error)
}

// StatsStore persists the append-only snapshot log and the per-chat
// settings table.
type StatsStore interface {
	AppendSnapshots(snapshots []PoolSnapshot) error
	LatestPerPool() ([]PoolSnapshot, error)
	RecentHistory(limit int) ([]PoolSnapshot, error)
	UpsertChatSettings(settings ChatSettings) error
	LoadAllChatSettings() ([]ChatSettings, error)
	PruneOlderThan(age time.Duration) (int64, error)
}
