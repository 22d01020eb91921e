package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurum-community/aurum-bot/internal/award"
	"github.com/aurum-community/aurum-bot/internal/bot"
	"github.com/aurum-community/aurum-bot/internal/bot/handlers"
	"github.com/aurum-community/aurum-bot/internal/database"
	"github.com/aurum-community/aurum-bot/internal/engagement"
	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
	"github.com/aurum-community/aurum-bot/internal/health"
	"github.com/aurum-community/aurum-bot/internal/policy"
	"github.com/aurum-community/aurum-bot/internal/poller"
	"github.com/aurum-community/aurum-bot/internal/ratelimit"
	"github.com/aurum-community/aurum-bot/internal/repository"
	"github.com/aurum-community/aurum-bot/internal/throttle"
	"github.com/aurum-community/aurum-bot/internal/user"
	"github.com/aurum-community/aurum-bot/internal/usercache"
	"github.com/aurum-community/aurum-bot/pkg/config"
	"github.com/aurum-community/aurum-bot/pkg/graceful"
	"github.com/aurum-community/aurum-bot/pkg/logger"
	appredis "github.com/aurum-community/aurum-bot/pkg/redis"

	_ "github.com/lib/pq"
)

const throttleCleanupInterval = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		return
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("failed to init sentry", slog.Any("error", err))
			return
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	log.Info("starting aurum community bot",
		slog.String("env", cfg.AppEnv),
		slog.String("http_port", cfg.Server.Port),
	)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		return
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		return
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		return
	}

	var (
		cache       *usercache.Cache
		limiter     ratelimit.Limiter
		redisHealth health.Checkable
	)
	if cfg.Redis.Enabled() {
		redisClient, err := appredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", slog.Any("error", err))
			return
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				log.Error("error closing redis", slog.Any("error", cerr))
			}
		}()

		cache = usercache.New(redisClient.Client, cfg.Cache.TTL)
		limiter = ratelimit.NewRedisLimiter(redisClient.Client, log)
		redisHealth = redisClient
	} else {
		limiter = ratelimit.NewMemoryLimiter(log)
	}

	ledger := repository.NewLedger(db, log)

	scoring := policy.New(ledger, log)
	if err := scoring.Load(ctx); err != nil {
		log.Error("failed to load scoring policy", slog.Any("error", err))
		return
	}

	engine := award.NewEngine(ledger, cache, log)
	users := user.NewService(ledger, cache, log)
	daily := throttle.NewDaily(scoring, log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	channels := bot.NewReactionChannels(ledger, log)
	if err := channels.Load(ctx); err != nil {
		log.Error("failed to load reaction channels", slog.Any("error", err))
		return
	}

	router := bot.NewRouter(log)
	router.Use(bot.RecoveryMiddleware(log, errHandler))
	router.Use(bot.LoggingMiddleware(log))
	router.Use(bot.MetricsMiddleware)
	router.Use(bot.RateLimitMiddleware(limiter, cfg.RateLimit, log))
	router.Use(bot.ErrorHandlingMiddleware(errHandler))

	router.RegisterCommand(bot.CommandVerify, handlers.Verify(users, engine, scoring, log))
	router.RegisterCommand(bot.CommandPoints, handlers.Points(users, log))
	router.RegisterCommand(bot.CommandLeaderboard, handlers.Leaderboard(users))
	router.RegisterCommand(bot.CommandConnectWallet, handlers.ConnectWallet(users, engine, scoring, log))
	router.RegisterCommand(bot.CommandNotifyToggle, handlers.NotifyToggle(users))

	adminOnly := bot.AdminOnly(cfg.Discord)
	router.RegisterCommand(bot.CommandResetPoints, adminOnly(handlers.ResetPoints(users)))
	router.RegisterCommand(bot.CommandEditScores, adminOnly(handlers.EditScores(scoring, ledger, log)))
	router.RegisterCommand(bot.CommandSetReactionChannel, adminOnly(handlers.SetReactionChannel(channels, ledger, log)))
	router.RegisterCommand(bot.CommandRemoveReactionChannel, adminOnly(handlers.RemoveReactionChannel(channels, ledger, log)))

	messages := bot.NewMessageHandler(engine, daily, log)
	reactions := bot.NewReactionHandler(engine, channels, scoring, limiter, cfg.RateLimit, log)

	discordBot, err := bot.New(cfg.Discord, router, messages, reactions, log)
	if err != nil {
		log.Error("failed to create bot", slog.Any("error", err))
		return
	}

	if err := discordBot.Start(ctx); err != nil {
		log.Error("failed to start bot", slog.Any("error", err))
		return
	}
	defer func() {
		if serr := discordBot.Stop(); serr != nil {
			log.Error("error stopping bot", slog.Any("error", serr))
		}
	}()

	source := engagement.NewClient(engagement.Config{
		BaseURL:     cfg.Twitter.BaseURL,
		BearerToken: cfg.Twitter.BearerToken,
		Timeout:     cfg.Twitter.Timeout,
		RetryCount:  cfg.Twitter.RetryCount,
	}, log)

	var announcer poller.Announcer
	if cfg.Discord.AnnounceChannelID != "" {
		announcer = bot.NewAnnouncer(discordBot.Session(), cfg.Discord.AnnounceChannelID, log)
	}

	engagementPoller := poller.New(poller.Config{
		AccountHandle: cfg.Poller.AccountHandle,
		Interval:      cfg.Poller.Interval,
		PostLimit:     cfg.Poller.PostLimit,
	}, source, ledger, engine, scoring, announcer, errHandler, log)

	if err := engagementPoller.Start(ctx); err != nil {
		log.Error("failed to start engagement poller", slog.Any("error", err))
		return
	}
	defer engagementPoller.Stop()

	go func() {
		ticker := time.NewTicker(throttleCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				daily.Cleanup()
			}
		}
	}()

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	checker.AddCheck("gateway", health.NewGatewayChecker(discordBot.IsConnected))
	if redisHealth != nil {
		checker.AddCheck("redis", redisHealth)
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", checker.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	server := graceful.NewServer(log, &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: logger.Middleware(mux),
	}, cfg.Server.ShutdownTimeout)

	config.Watch(v, log, func(next *config.Config) {
		log.Info("configuration reloaded", slog.String("env", next.AppEnv))
	})

	if err := server.ListenAndServe(ctx); err != nil {
		log.Error("http server failed", slog.Any("error", err))
	}

	log.Info("aurum community bot shutting down")
}
