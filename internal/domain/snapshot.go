package domain

import "time"

// PoolSnapshot is one point-in-time observation of a mining pool's reported
// state. Rows are append-only: once written they are never updated or deleted
// (retention pruning aside).
type PoolSnapshot struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"index" json:"name"`
	Height         uint64    `json:"height"`
	Hashrate       float64   `json:"hashrate"`         // units/sec, taken verbatim from the pool API
	Miners         uint      `json:"miners"`
	LastBlockFound int64     `json:"last_block_found"` // unix seconds
	CreatedAt      time.Time `gorm:"index" json:"created_at"` // assigned at persistence time
}

// TableName keeps the table name the original deployment used.
func (PoolSnapshot) TableName() string { return "pool_stats" }

// ChatSettings holds a chat session's auto-compare preference.
// The in-memory registry is authoritative at runtime; this row is its
// durability shadow, rewritten wholesale on every mutation.
type ChatSettings struct {
	ChatID          int64 `gorm:"primaryKey" json:"chat_id"`
	AutoCompare     bool  `json:"auto_compare"`
	CompareInterval int64 `json:"compare_interval"`  // milliseconds, one of AllowedIntervals
	LastAutoCompare int64 `json:"last_auto_compare"` // unix milliseconds, 0 = never fired
}

func (ChatSettings) TableName() string { return "chat_settings" }

// AllowedIntervals enumerates the selectable auto-compare periods (ms).
var AllowedIntervals = []int64{
	10_000,     // 10초
	60_000,     // 1분
	300_000,    // 5분
	1_800_000,  // 30분
	3_600_000,  // 1시간
	10_800_000, // 3시간
	21_600_000, // 6시간
	43_200_000, // 12시간
	86_400_000, // 24시간
}

// DefaultCompareInterval is applied the first time a chat opens the settings menu.
const DefaultCompareInterval int64 = 300_000

// IsAllowedInterval reports whether ms is one of the enumerated periods.
func IsAllowedInterval(ms int64) bool {
	for _, v := range AllowedIntervals {
		if v == ms {
			return true
		}
	}
	return false
}

// DefaultChatSettings returns the settings a chat has before it ever
// touched the settings menu: auto-compare off, 5 minute interval.
func DefaultChatSettings(chatID int64) ChatSettings {
	return ChatSettings{
		ChatID:          chatID,
		AutoCompare:     false,
		CompareInterval: DefaultCompareInterval,
		LastAutoCompare: 0,
	}
}

// Due reports whether an auto-compare is owed at now, i.e. the entry is
// enabled and its interval has elapsed since the last firing.
func (c ChatSettings) Due(now time.Time) bool {
	return c.AutoCompare && now.UnixMilli()-c.LastAutoCompare >= c.CompareInterval
}
