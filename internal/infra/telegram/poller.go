package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pool_watch/internal/domain"
)

const (
	pollTimeoutSec = 30
	errorBackoff   = 3 * time.Second
)

// Poller long-polls getUpdates and translates messages and button presses
// into domain commands. Per-update failures are logged; the loop only exits
// with the context.
type Poller struct {
	client   *Client
	commands chan domain.Command
	offset   int64
	logger   *slog.Logger
}

// NewPoller creates a poller over an authenticated client.
func NewPoller(client *Client) *Poller {
	return &Poller{
		client:   client,
		commands: make(chan domain.Command, 64),
		logger:   slog.Default().With("module", "telegram_poller"),
	}
}

// Commands is the stream of translated inbound actions.
func (p *Poller) Commands() <-chan domain.Command {
	return p.commands
}

// Run blocks until ctx is cancelled. Intended to be called with `go`.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Telegram poller started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Telegram poller stopped")
			return
		default:
		}

		updates, err := p.client.getUpdates(ctx, p.offset, pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("Telegram poller stopped")
				return
			}
			p.logger.Warn("getUpdates failed", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}

		for _, u := range updates {
			p.offset = u.UpdateID + 1
			if cmd, ok := p.translate(ctx, u); ok {
				select {
				case p.commands <- cmd:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (p *Poller) translate(ctx context.Context, u update) (domain.Command, bool) {
	switch {
	case u.Message != nil:
		return commandFromText(u.Message.Chat.ID, u.Message.Text)
	case u.Callback != nil:
		if err := p.client.answerCallback(ctx, u.Callback.ID); err != nil {
			p.logger.Warn("answerCallbackQuery failed", slog.Any("error", err))
		}
		if u.Callback.Message == nil {
			return domain.Command{}, false
		}
		return commandFromCallback(u.Callback.Message.Chat.ID, u.Callback.Data)
	}
	return domain.Command{}, false
}

// commandFromText maps a "/command" message to an action. A trailing
// "@botname" mention is ignored.
func commandFromText(chatID int64, text string) (domain.Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return domain.Command{}, false
	}
	name := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}

	switch name {
	case "start":
		return domain.Command{ChatID: chatID, Action: domain.ActionStart}, true
	case "stop":
		return domain.Command{ChatID: chatID, Action: domain.ActionStop}, true
	case "monitor":
		return domain.Command{ChatID: chatID, Action: domain.ActionMonitor}, true
	case "status":
		return domain.Command{ChatID: chatID, Action: domain.ActionStatus}, true
	case "compare":
		return domain.Command{ChatID: chatID, Action: domain.ActionCompare}, true
	case "history":
		return domain.Command{ChatID: chatID, Action: domain.ActionHistory}, true
	case "settings":
		return domain.Command{ChatID: chatID, Action: domain.ActionSettings}, true
	case "menu":
		return domain.Command{ChatID: chatID, Action: domain.ActionMenu}, true
	}
	return domain.Command{}, false
}

// commandFromCallback maps button callback data to an action. Interval
// selections carry the chosen period as "settings:interval:<ms>".
func commandFromCallback(chatID int64, data string) (domain.Command, bool) {
	if ms, ok := strings.CutPrefix(data, domain.ActionCompareInterval+":"); ok {
		return domain.Command{ChatID: chatID, Action: domain.ActionCompareInterval, Arg: ms}, true
	}

	switch data {
	case domain.ActionStart, domain.ActionStop, domain.ActionMonitor,
		domain.ActionStatus, domain.ActionCompare, domain.ActionHistory,
		domain.ActionSettings, domain.ActionMenu, domain.ActionToggleCompare:
		return domain.Command{ChatID: chatID, Action: data}, true
	}
	return domain.Command{}, false
}

// DefaultBotCommands is the command menu published at startup.
func DefaultBotCommands() []BotCommand {
	return []BotCommand{
		{Command: "start", Description: "모니터링 시작"},
		{Command: "stop", Description: "모니터링 중지"},
		{Command: "monitor", Description: "모니터링 상태 확인"},
		{Command: "status", Description: "현재 풀 상태 확인"},
		{Command: "compare", Description: "풀 높이 비교"},
		{Command: "history", Description: "풀 상태 기록 보기"},
		{Command: "settings", Description: "자동 비교 설정"},
		{Command: "menu", Description: "메뉴 보기"},
	}
}
