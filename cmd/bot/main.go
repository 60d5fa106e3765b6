package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"steampool/internal/config"
	"steampool/internal/conversation"
	"steampool/internal/dispatch"
	"steampool/internal/flow"
	"steampool/internal/games"
	"steampool/internal/handler"
	"steampool/internal/middleware"
	"steampool/internal/platform/steam"
	"steampool/internal/probe"
	"steampool/internal/repository"
	"steampool/internal/repository/jsonfile"
	"steampool/internal/repository/postgres"
	"steampool/internal/service"
	"steampool/internal/subscription"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v3"
)

const (
	dbMaxRetries    = 30
	dbRetryDelay    = 2 * time.Second
	janitorInterval = 5 * time.Minute
	drainTimeout    = 15 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var migrationsURL string

	root := &cobra.Command{
		Use:          "bot",
		Short:        "Telegram bot that keeps a shared pool of Steam accounts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), migrationsURL)
		},
	}
	root.PersistentFlags().StringVar(&migrationsURL, "migrations", "file://migrations", "migration source URL")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), migrationsURL)
		},
	})
	root.AddCommand(newMigrateCmd(&migrationsURL))
	return root
}

func newMigrateCmd(migrationsURL *string) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.StoreDriver != config.StorePostgres {
				return fmt.Errorf("migrate needs STORE_DRIVER=%s, got %q", config.StorePostgres, cfg.StoreDriver)
			}

			db, err := postgres.Connect(cmd.Context(), cfg.DSN(), dbMaxRetries, dbRetryDelay, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return runMigrations(db.DB, *migrationsURL, down, logger)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back every migration instead of applying them")
	return cmd
}

// setup loads configuration and builds the logger it asks for
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

func runServe(ctx context.Context, migrationsURL string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting steampool bot",
		zap.String("store", cfg.StoreDriver),
		zap.String("cache", cfg.CacheDriver),
	)

	catalog, err := games.LoadCatalog(cfg.AliasesPath)
	if err != nil {
		logger.Error("Failed to load game aliases", zap.Error(err))
		return err
	}

	accountsRepo, requestsRepo, store, err := openStore(ctx, cfg, migrationsURL, logger)
	if err != nil {
		logger.Error("Failed to open store", zap.Error(err))
		return err
	}
	defer store.Close()

	cache, memory, err := openCache(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open subscription cache", zap.Error(err))
		return err
	}
	defer cache.Close()

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c tele.Context) {
			logger.Error("Telegram error", zap.Error(err))
		},
	})
	if err != nil {
		logger.Error("Failed to create bot", zap.Error(err))
		return err
	}
	logger.Info("Telegram bot initialized", zap.String("username", bot.Me.Username))

	messenger := handler.NewMessenger(bot, logger)
	gate := subscription.NewGate(
		handler.NewMembershipChecker(bot, cfg.ChannelID),
		cache.Store,
		logger,
		subscription.WithTTL(cfg.SubscriptionTTL),
	)
	prober := probe.NewProber(steam.NewAuthenticator(logger), logger, probe.WithTimeout(cfg.ProbeTimeout))
	accounts := service.NewAccountService(accountsRepo, catalog)
	requests := service.NewRequestService(requestsRepo)
	engine := conversation.NewEngine(messenger, logger)

	flows := flow.New(engine, prober, accounts, requests, gate, flow.Config{
		AdminIDs:   cfg.AdminIDs,
		ChannelURL: cfg.ChannelURL,
	}, logger)

	router := dispatch.NewRouter(engine, logger)
	router.Use(middleware.Recover(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Subscription(gate, flows.Blocked, logger, flow.GateExempt...))
	flows.Register(router)

	handlerCtx, cancelHandlers := handlerContext(ctx)
	defer cancelHandlers()

	loop := dispatch.NewLoop(logger)
	dispatcher := dispatch.NewDispatcher(handlerCtx, loop, router, messenger, logger)
	handler.NewHandler(bot, dispatcher, logger).RegisterHandlers()
	logger.Info("Handlers registered")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Bot started successfully")
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, stopping bot...")
		bot.Stop()
		return nil
	})
	g.Go(func() error {
		runJanitor(gctx, engine, memory, cfg.SessionIdleTTL, cfg.SubscriptionTTL, logger)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}

	drain(loop, cancelHandlers, drainTimeout, logger)

	logger.Info("Bot stopped gracefully")
	return nil
}

// handlerContext keeps ctx's values but not its cancellation, so turns
// running when the signal arrives can finish during the drain
func handlerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(context.WithoutCancel(ctx))
}

// drain waits for queued turns; when timeout passes first their context is
// cancelled so probes and store writes give up.
func drain(loop *dispatch.Loop, cancelHandlers context.CancelFunc, timeout time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := loop.Close(ctx); err != nil {
		logger.Warn("In-flight updates abandoned", zap.Int("busy", loop.Busy()), zap.Error(err))
		cancelHandlers()
	}
}

// openStore returns the account and request repositories for the configured
// driver plus the handle that releases them
func openStore(ctx context.Context, cfg *config.Config, migrationsURL string, logger *zap.Logger) (
	repository.AccountRepository, repository.RequestRepository, io.Closer, error,
) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.DSN(), dbMaxRetries, dbRetryDelay, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("Database connection established")

		if err := runMigrations(db.DB, migrationsURL, false, logger); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return postgres.NewAccountRepo(db), postgres.NewRequestRepo(db), db, nil

	default:
		store, err := jsonfile.NewStore(cfg.AccountsPath, cfg.RequestsPath)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("JSON store opened",
			zap.String("accounts", cfg.AccountsPath),
			zap.String("requests", cfg.RequestsPath),
		)
		return store, store, store, nil
	}
}

type cacheHandle struct {
	subscription.Store
	close func() error
}

func (h cacheHandle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// openCache builds the subscription cache. The memory store is also
// returned so the janitor can prune it; it is nil for Redis, whose keys
// expire on their own.
func openCache(ctx context.Context, cfg *config.Config) (cacheHandle, *subscription.MemoryStore, error) {
	if cfg.CacheDriver != config.CacheRedis {
		memory := subscription.NewMemoryStore()
		return cacheHandle{Store: memory}, memory, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return cacheHandle{}, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}
	return cacheHandle{
		Store: subscription.NewRedisStore(client, cfg.SubscriptionTTL),
		close: client.Close,
	}, nil, nil
}

// runJanitor drops idle conversations and expired cache entries until ctx ends
func runJanitor(
	ctx context.Context,
	engine *conversation.Engine,
	memory *subscription.MemoryStore,
	idle, ttl time.Duration,
	logger *zap.Logger,
) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Janitor stopped")
			return
		case now := <-ticker.C:
			janitorPass(engine, memory, idle, ttl, now, logger)
		}
	}
}

// janitorPass evicts idle conversations and stale cache entries and logs the
// cache counters
func janitorPass(
	engine *conversation.Engine,
	memory *subscription.MemoryStore,
	idle, ttl time.Duration,
	now time.Time,
	logger *zap.Logger,
) {
	fields := []zap.Field{
		zap.Int("conversations", engine.Sweep(idle)),
		zap.Int("active", engine.Len()),
	}
	if memory != nil {
		pruned := memory.Prune(now.Add(-ttl))
		stats := memory.Stats()
		fields = append(fields,
			zap.Int("cache_entries", pruned),
			zap.Int("cache_size", stats.Size),
			zap.Int64("cache_hits", stats.Hits),
			zap.Int64("cache_misses", stats.Misses),
		)
	}
	logger.Info("Janitor pass", fields...)
}
