package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"pool_watch/internal/domain"
)

// Commands routes inbound chat actions to the registries, the fetcher and
// the store, and answers through the notifier. Failures are converted to a
// user-facing notice for the requester only; the dispatch loop never dies.
type Commands struct {
	fetcher  domain.SnapshotSource
	store    domain.StatsStore
	notifier domain.Notifier
	subs     *Subscriptions
	auto     *AutoCompare
	logger   *slog.Logger
}

// NewCommands wires the command router.
func NewCommands(fetcher domain.SnapshotSource, store domain.StatsStore, notifier domain.Notifier, subs *Subscriptions, auto *AutoCompare) *Commands {
	return &Commands{
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		subs:     subs,
		auto:     auto,
		logger:   slog.Default().With("module", "commands"),
	}
}

// Run consumes the inbound command stream until ctx is cancelled.
// Intended to be called with `go`.
func (c *Commands) Run(ctx context.Context, commands <-chan domain.Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-commands:
			c.Handle(ctx, cmd)
		}
	}
}

// Handle executes one inbound action.
func (c *Commands) Handle(ctx context.Context, cmd domain.Command) {
	var err error
	switch cmd.Action {
	case domain.ActionStart:
		err = c.handleStart(ctx, cmd.ChatID)
	case domain.ActionStop:
		err = c.handleStop(ctx, cmd.ChatID)
	case domain.ActionMonitor:
		err = c.handleMonitor(ctx, cmd.ChatID)
	case domain.ActionStatus:
		err = c.handleStatus(ctx, cmd.ChatID)
	case domain.ActionCompare:
		err = c.handleCompare(ctx, cmd.ChatID)
	case domain.ActionHistory:
		err = c.handleHistory(ctx, cmd.ChatID)
	case domain.ActionMenu:
		err = c.notifier.SendMenu(ctx, cmd.ChatID, msgChooseAction, mainMenu())
	case domain.ActionSettings:
		err = c.handleSettings(ctx, cmd.ChatID)
	case domain.ActionToggleCompare:
		err = c.handleToggle(ctx, cmd.ChatID)
	case domain.ActionCompareInterval:
		err = c.handleInterval(ctx, cmd.ChatID, cmd.Arg)
	default:
		c.logger.Warn("Unknown action", slog.String("action", cmd.Action))
		return
	}

	if err != nil {
		c.logger.Warn("Command reply failed",
			slog.String("action", cmd.Action),
			slog.Int64("chat_id", cmd.ChatID),
			slog.Any("error", err),
		)
	}
}

func (c *Commands) handleStart(ctx context.Context, chatID int64) error {
	if already := c.subs.Subscribe(chatID); already {
		return c.notifier.Send(ctx, chatID, msgAlreadyActive)
	}
	c.logger.Info("Chat subscribed", slog.Int64("chat_id", chatID))
	return c.notifier.Send(ctx, chatID, msgSubscribed)
}

func (c *Commands) handleStop(ctx context.Context, chatID int64) error {
	if wasSubscribed := c.subs.Unsubscribe(chatID); !wasSubscribed {
		return c.notifier.Send(ctx, chatID, msgNotActive)
	}
	c.logger.Info("Chat unsubscribed", slog.Int64("chat_id", chatID))
	return c.notifier.Send(ctx, chatID, msgUnsubscribed)
}

func (c *Commands) handleMonitor(ctx context.Context, chatID int64) error {
	if !c.subs.IsSubscribed(chatID) {
		return c.notifier.Send(ctx, chatID, msgMonitorOff)
	}
	return c.notifier.Send(ctx, chatID, monitorMessage(chatID, CheckInterval))
}

func (c *Commands) handleStatus(ctx context.Context, chatID int64) error {
	snapshots, err := c.fetcher.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("Status fetch failed", slog.Any("error", err))
		return c.notifier.Send(ctx, chatID, msgCheckFailed)
	}
	return c.notifier.Send(ctx, chatID, "📊 현재 풀 상태:\n\n"+statusMessage(snapshots))
}

func (c *Commands) handleCompare(ctx context.Context, chatID int64) error {
	snapshots, err := c.fetcher.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("Compare fetch failed", slog.Any("error", err))
		return c.notifier.Send(ctx, chatID, msgCompareFailed)
	}

	report, err := domain.Compare(snapshots)
	if err != nil {
		return c.notifier.Send(ctx, chatID, msgCompareFailed)
	}
	return c.notifier.Send(ctx, chatID, compareMessage(report))
}

func (c *Commands) handleHistory(ctx context.Context, chatID int64) error {
	history, err := c.store.RecentHistory(5)
	if err != nil {
		c.logger.Warn("History query failed", slog.Any("error", err))
		return c.notifier.Send(ctx, chatID, msgHistoryFailed)
	}
	return c.notifier.Send(ctx, chatID, historyMessage(history))
}

func (c *Commands) handleSettings(ctx context.Context, chatID int64) error {
	settings := c.auto.Get(chatID)
	return c.notifier.SendMenu(ctx, chatID, settingsMessage(settings), settingsMenu(settings))
}

func (c *Commands) handleToggle(ctx context.Context, chatID int64) error {
	settings, err := c.auto.Toggle(chatID)
	if err != nil {
		c.logger.Error("Toggle persist failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return c.notifier.Send(ctx, chatID, msgSettingsFailed)
	}
	return c.notifier.SendMenu(ctx, chatID, settingsMessage(settings), settingsMenu(settings))
}

func (c *Commands) handleInterval(ctx context.Context, chatID int64, arg string) error {
	ms, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return c.notifier.Send(ctx, chatID, msgInvalidInterval)
	}

	if err := c.auto.SetInterval(chatID, ms); err != nil {
		if errors.Is(err, domain.ErrInvalidInterval) {
			return c.notifier.Send(ctx, chatID, msgInvalidInterval)
		}
		c.logger.Error("Interval persist failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return c.notifier.Send(ctx, chatID, msgSettingsFailed)
	}
	return c.notifier.Send(ctx, chatID, intervalSetMessage(ms))
}
