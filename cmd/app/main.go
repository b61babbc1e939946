package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitdex_battle/internal/bot"
	"fitdex_battle/internal/config"
	"fitdex_battle/internal/db"
	httpServer "fitdex_battle/internal/http"
	"fitdex_battle/internal/http/handlers"
	"fitdex_battle/internal/http/middleware"
	"fitdex_battle/internal/logger"
	"fitdex_battle/internal/metrics"
	"fitdex_battle/internal/repository"
	"fitdex_battle/internal/service"
	"fitdex_battle/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", "error", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Redis нужен для рейтинга и лимитера, без него работаем на скане профилей
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			if cfg.StoreBackend == config.StoreRedis {
				logger.Fatal("redis connect failed", "error", err)
			}
			log.Warn("redis unavailable, leaderboard and rate limit disabled", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var pool *pgxpool.Pool
	var kv repository.KV
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres connect failed", "error", err)
		}
		defer pool.Close()
		pg := repository.NewPostgresKV(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("schema", "error", err)
		}
		kv = pg
	case config.StoreRedis:
		kv = repository.NewRedisKV(rdb, "fitdex")
	default:
		log.Warn("in-memory store: data is lost on restart")
		kv = repository.NewMemoryKV()
	}
	log.Info("store ready", "backend", cfg.StoreBackend)

	clock := clockwork.NewRealClock()
	m := metrics.New(nil)

	users := repository.NewUserRepository(kv)
	history := repository.NewHistoryRepository(kv)
	audit := service.NewAuditService(repository.NewAuditRepository(kv))

	var board service.Leaderboard
	if rdb != nil {
		board = repository.NewLeaderboardRepository(rdb)
	}
	ranking := service.NewRankingService(users, board)
	if board != nil {
		if err := ranking.Sync(ctx); err != nil {
			log.Warn("leaderboard sync failed", "error", err)
		}
	}

	// Бот с итогами матчей поднимается до сервиса битвы, чтобы передать его как notifier
	var resultsBot *bot.ResultsBot
	opts := service.BattleOptions{
		Clock:     clock,
		IdleAfter: cfg.SessionIdle,
		ReapEvery: cfg.ReapEvery,
		Metrics:   m,
	}
	if cfg.BotEnabled() {
		resultsBot, err = bot.NewResultsBot(cfg.BotToken, cfg.BotChatID, ranking, audit)
		if err != nil {
			log.Error("failed to start results bot", "error", err)
			resultsBot = nil
		} else {
			go resultsBot.Start()
			opts.Notifier = resultsBot
			log.Info("results bot started", "chat_id", cfg.BotChatID)
		}
	}

	hub := ws.NewHub(nil, m)
	opts.Publisher = hub
	battleService := service.NewBattleService(users, history, ranking, audit, opts)
	hub.SetActions(battleService)
	if err := battleService.StartReaper(); err != nil {
		logger.Fatal("reaper", "error", err)
	}

	authService := service.NewAuthService(users, audit, cfg.JWTSecret, cfg.JWTTTL, cfg.BotToken, clock)
	practiceService := service.NewPracticeService(ranking, history, audit, m, clock)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	httpServer.RegisterRoutes(r, httpServer.Options{
		Handler: &handlers.Handler{
			Auth:     authService,
			Users:    users,
			History:  history,
			Ranking:  ranking,
			Battle:   battleService,
			Practice: practiceService,
			Audit:    audit,
			Clock:    clock,
			Version:  Version,
		},
		Hub:           hub,
		Limiter:       middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute, m, clock),
		Metrics:       m,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	// сессии закрываются после HTTP, итоги успевают сохраниться
	battleService.Shutdown()

	if resultsBot != nil {
		resultsBot.Stop()
	}

	log.Info("server exited")
}
