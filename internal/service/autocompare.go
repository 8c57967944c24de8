package service

import (
	"fmt"
	"sync"
	"time"

	"pool_watch/internal/domain"
)

// AutoCompare is the registry of per-chat auto-compare settings: a
// write-through cache over the chat_settings table. Memory is updated first
// and the row is persisted before the triggering command is acknowledged, so
// the durable copy can never run ahead of memory.
type AutoCompare struct {
	mu      sync.Mutex
	store   domain.StatsStore
	entries map[int64]domain.ChatSettings
}

// NewAutoCompare creates an empty registry backed by store.
func NewAutoCompare(store domain.StatsStore) *AutoCompare {
	return &AutoCompare{
		store:   store,
		entries: make(map[int64]domain.ChatSettings),
	}
}

// LoadFromStore seeds the registry with every persisted row. Called once at
// startup; the in-memory copy is authoritative afterwards.
func (a *AutoCompare) LoadFromStore() error {
	all, err := a.store.LoadAllChatSettings()
	if err != nil {
		return fmt.Errorf("load chat settings: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range all {
		a.entries[s.ChatID] = s
	}
	return nil
}

// Get returns the chat's settings, or the default-disabled value if the chat
// never touched the settings menu. Never fails; a default is not persisted.
func (a *AutoCompare) Get(chatID int64) domain.ChatSettings {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.entries[chatID]; ok {
		return s
	}
	return domain.DefaultChatSettings(chatID)
}

// SetInterval changes the chat's compare period. Values outside the allowed
// enumeration are rejected and existing settings stay untouched.
func (a *AutoCompare) SetInterval(chatID int64, intervalMs int64) error {
	if !domain.IsAllowedInterval(intervalMs) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidInterval, intervalMs)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.entryLocked(chatID)
	s.CompareInterval = intervalMs
	a.entries[chatID] = s
	return a.store.UpsertChatSettings(s)
}

// Toggle flips the chat's auto-compare flag and returns the new settings.
func (a *AutoCompare) Toggle(chatID int64) (domain.ChatSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.entryLocked(chatID)
	s.AutoCompare = !s.AutoCompare
	a.entries[chatID] = s
	return s, a.store.UpsertChatSettings(s)
}

// DueEntries returns every enabled entry whose interval has elapsed at now.
// The caller is responsible for MarkFired after dispatching.
func (a *AutoCompare) DueEntries(now time.Time) []domain.ChatSettings {
	a.mu.Lock()
	defer a.mu.Unlock()

	var due []domain.ChatSettings
	for _, s := range a.entries {
		if s.Due(now) {
			due = append(due, s)
		}
	}
	return due
}

// MarkFired records that the chat's comparison fired at now.
func (a *AutoCompare) MarkFired(chatID int64, now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.entryLocked(chatID)
	s.LastAutoCompare = now.UnixMilli()
	a.entries[chatID] = s
	return a.store.UpsertChatSettings(s)
}

// entryLocked returns the current entry or a fresh default. Caller holds mu.
func (a *AutoCompare) entryLocked(chatID int64) domain.ChatSettings {
	if s, ok := a.entries[chatID]; ok {
		return s
	}
	return domain.DefaultChatSettings(chatID)
}
