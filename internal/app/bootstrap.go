package app

import (
	"log/slog"

	"github.com/joho/godotenv"

	"pool_watch/internal/infra"
	"pool_watch/internal/infra/storage"
	"pool_watch/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config        *infra.Config
	Storage       *storage.Storage
	Subscriptions *service.Subscriptions
	AutoCompare   *service.AutoCompare
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB,
// registries). Any error here is fatal: the process must not start on an
// invalid configuration.
func (b *Bootstrap) Initialize() error {
	// 1. Load .env, then config (env always wins over the yaml file)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.DB.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.DB.Path))

	// 4. Registries. Subscriptions start empty; auto-compare settings are
	// seeded from their durability shadow.
	b.Subscriptions = service.NewSubscriptions()
	b.AutoCompare = service.NewAutoCompare(store)
	if err := b.AutoCompare.LoadFromStore(); err != nil {
		return err
	}
	slog.Info("✅ Registries ready", slog.Int("pools", len(cfg.PoolEndpoints())))

	return nil
}
