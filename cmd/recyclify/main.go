// Package main is the entry point of the recyclify command line client.
//
// The client talks to the Recyclify backend on behalf of one signed-in user.
// It restores the session from the token store, loads the user's profile
// and dispatches to the dashboard commands of the user's role.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	// Application layer
	"github.com/recyclify/recyclify-client/internal/application/command"
	"github.com/recyclify/recyclify-client/internal/application/query"

	// Domain layer
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"

	// Infrastructure layer
	"github.com/recyclify/recyclify-client/internal/infrastructure/external/recyclify"
	"github.com/recyclify/recyclify-client/internal/infrastructure/messaging"
	"github.com/recyclify/recyclify-client/internal/infrastructure/metrics"
	"github.com/recyclify/recyclify-client/internal/infrastructure/persistence/redis"
	"github.com/recyclify/recyclify-client/internal/infrastructure/persistence/tokenstore"

	// Interface layer
	"github.com/recyclify/recyclify-client/internal/interface/cli"

	// Packages
	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code, err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(cli.ExitFailure)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string) (int, error) {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	defer func() { _ = log.Sync() }()

	log.Debug("starting recyclify client",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("api", cfg.API.BaseURL),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. METRICS
	// ─────────────────────────────────────────────────────────────────────────
	var (
		rec      metrics.Recorder = metrics.Nop{}
		registry *prometheus.Registry
	)
	if cfg.Features.IsEnabled(config.FeatureMetrics, nil) {
		registry = prometheus.NewRegistry()
		rec = metrics.NewCollector(registry)
	}
	defer func() {
		if registry == nil || cfg.Observability.MetricsFile == "" {
			return
		}
		if err := metrics.WriteSnapshot(cfg.Observability.MetricsFile, registry); err != nil {
			log.Warn("failed to write metrics snapshot", logger.Err(err))
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	cache, err := setupRedis(ctx, cfg, log)
	if err != nil {
		return 0, err
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. TOKEN STORAGE AND API CLIENT
	// ─────────────────────────────────────────────────────────────────────────
	storage, err := tokenstore.New(cfg.TokenStore, cache)
	if err != nil {
		return 0, fmt.Errorf("failed to open token store: %w", err)
	}

	clientCfg := recyclify.ConfigFromAPI(cfg.API)
	clientCfg.Tokens = recyclify.StorageTokens{Storage: storage}
	clientCfg.Logger = log.With(logger.Component("api"))
	clientCfg.Metrics = rec
	client := recyclify.NewClient(clientCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(messaging.Config{Logger: log.With(logger.Component("events"))})
	defer func() { _ = bus.Close() }()
	if err := bus.SubscribeAll(messaging.AuditHandler(log.With(logger.Component("audit")))); err != nil {
		return 0, fmt.Errorf("failed to subscribe audit handler: %w", err)
	}
	sessionMetrics := messaging.SessionMetricsHandler(rec)
	for _, t := range []shared.EventType{shared.EventSessionLoaded, shared.EventSessionFailed} {
		if err := bus.Subscribe(t, sessionMetrics); err != nil {
			return 0, fmt.Errorf("failed to subscribe session metrics: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SESSION
	// ─────────────────────────────────────────────────────────────────────────
	store, err := session.NewStore(ctx, storage, client,
		session.WithLogger(log.With(logger.Component("session"))),
		session.WithEventPublisher(bus),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to restore session: %w", err)
	}

	// A failed fetch is kept on the session; guarded commands report it.
	err = store.FetchUser(ctx)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNoToken):
		log.Debug("no saved token")
	case ctx.Err() != nil:
		return cli.ExitFailure, ctx.Err()
	default:
		log.Debug("could not load profile", logger.Err(err))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	var lbCache leaderboard.Cache
	if cache != nil && !cfg.Redis.CacheDisabled {
		lbCache = redis.NewLeaderboardCache(cache, cfg.API.CacheTTL, rec)
	}

	deps := command.Deps{
		Events:   bus,
		Features: cfg.Features,
		Logger:   log.With(logger.Component("command")),
	}
	teacherDeps := query.TeacherDeps{
		Sessions: store,
		Classes:  client,
		Quests:   client,
		Cache:    lbCache,
		Features: cfg.Features,
		Logger:   log.With(logger.Component("query")),
	}

	services := cli.Services{
		Profile:            query.NewProfileHandler(store, client, log),
		StudentHome:        query.NewStudentHomeHandler(store, client, cfg.Features),
		StudentLeaderboard: query.NewStudentLeaderboardHandler(store, client),
		StudentQuests:      query.NewStudentQuestsHandler(store, client),
		ClaimGift:          command.NewClaimStreakGiftHandler(store, client, deps),
		Recognise:          command.NewRecogniseImageHandler(store, client, deps),

		Classes:           query.NewClassesHandler(teacherDeps),
		ClassDashboard:    query.NewClassDashboardHandler(teacherDeps),
		ClassLeaderboards: query.NewClassLeaderboardsHandler(teacherDeps),
		Teacher:           command.NewTeacherHandler(store, client, lbCache, deps),

		AdminQueries: query.NewAdminHandler(store, client, client),
		Admin:        command.NewAdminHandler(store, client, client, deps),

		Account: command.NewAccountHandler(store, client, store, deps),
		Public:  command.NewPublicHandler(store, client, deps),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. RUN
	// ─────────────────────────────────────────────────────────────────────────
	app := &cli.App{
		Session:  store,
		Services: services,
		Logger:   log,
	}
	return app.Run(ctx, args), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.Observability.LogFormat == string(logger.FormatConsole) {
		opts.Format = logger.FormatConsole
	}
	opts.AddCaller = cfg.App.Debug

	return logger.New(opts).With(logger.String("app", cfg.App.Name))
}

// setupRedis connects when the token store or the response cache needs it.
// Only the redis token store makes a failed connection fatal.
func setupRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) (*redis.Cache, error) {
	needStore := cfg.TokenStore.Kind == config.TokenStoreRedis
	needCache := !cfg.Redis.CacheDisabled && cfg.Features.AnyEnabled(config.FeatureLeaderboardCache)
	if !needStore && !needCache {
		return nil, nil
	}

	cache, err := redis.NewCache(ctx, cfg.Redis)
	if err != nil {
		if needStore {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Warn("redis unavailable, leaderboard cache disabled", logger.String("addr", cfg.Redis.Addr()), logger.Err(err))
		return nil, nil
	}
	return cache, nil
}
