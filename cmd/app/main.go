package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pool_watch/internal/app"
	"pool_watch/internal/infra"
	"pool_watch/internal/infra/telegram"
	"pool_watch/internal/service"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := bootstrap.Config

	// 4. Chat gateway
	bot := telegram.NewClient(cfg.Telegram.Token)
	if err := bot.SetCommands(ctx, telegram.DefaultBotCommands()); err != nil {
		slog.Warn("Failed to publish command menu", slog.Any("error", err))
	}

	poller := telegram.NewPoller(bot)
	go poller.Run(ctx)
	slog.InfoContext(ctx, "✅ Telegram poller started")

	// 5. Pool fetcher + scheduler loops
	fetcher := infra.NewFetcher(cfg.PoolEndpoints())

	monitor := service.NewMonitor(fetcher, bootstrap.Storage, bot, bootstrap.Subscriptions, bootstrap.AutoCompare)
	monitor.Start(ctx)
	defer monitor.Stop()
	slog.InfoContext(ctx, "✅ Monitor loops started", slog.Int("pools", len(cfg.PoolEndpoints())))

	// 6. Command dispatch
	commands := service.NewCommands(fetcher, bootstrap.Storage, bot, bootstrap.Subscriptions, bootstrap.AutoCompare)
	go commands.Run(ctx, poller.Commands())

	slog.InfoContext(ctx, "✨ Pool watch fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
