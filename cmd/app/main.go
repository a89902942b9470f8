package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Avalanche-Team1-Africa/ChainRivals/docs"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/cache"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/config"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/logger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/metrics"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/middleware"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/badge"
	challengeHTTP "github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/challenge/delivery/http"
	challengeService "github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/challenge/service"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/leaderboard"
	leaderboardHTTP "github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/leaderboard/delivery/http"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/ledger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/scoring"
	submissionHTTP "github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/submission/delivery/http"
	submissionService "github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/submission/service"
	userHTTP "github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/user/delivery/http"
	userService "github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/user/service"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/platform/postgres"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/platform/redis"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/platform/ton"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository/memory"
	postgresRepo "github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository/postgres"
)

// @title           ChainRivals API
// @version         1.0
// @description     Smart-contract contest backend: submissions, reputation, badges and leaderboard.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key
// @description Shared key for challenge management and progression re-evaluation

// @tag.name users
// @tag.description Participant registration and profiles

// @tag.name challenges
// @tag.description Contest challenges

// @tag.name submissions
// @tag.description Code submissions, scoring and reputation

// @tag.name badges
// @tag.description Badge progression

// @tag.name leaderboard
// @tag.description Ranking of participants

const serviceName = "chainrivals"

// readiness собирает зависимости для /ready
type readiness struct {
	postgres *postgres.Client
	redis    *redis.Client
	ledger   ledger.Ledger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Debug)
	logger.Info().
		Bool("debug", cfg.Debug).
		Str("storage", cfg.Storage.Driver).
		Str("policy", cfg.Progression.Policy).
		Msg("Starting ChainRivals backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := &readiness{}

	// Хранилище
	var store repository.Store
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		postgresClient, err := postgres.NewClient(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer postgresClient.Close()

		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(postgresClient.GetDB()); err != nil {
				logger.Fatal().Err(err).Msg("Failed to apply migrations")
			}
		}
		store = postgresRepo.NewPostgresRepository(postgresClient.GetDB())
		ready.postgres = postgresClient
	default:
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		store = memory.NewStore()
	}

	// Кэш лидерборда
	var leaderboardCache cache.Cache = cache.Noop{}
	if cfg.Redis.Enabled {
		redisClient, err := redis.Open(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		leaderboardCache = cache.NewCacheService(redisClient)
		ready.redis = redisClient
	}

	// Леджер
	var chainLedger ledger.Ledger = ledger.Disabled{}
	if cfg.Ledger.Enabled {
		tonClient, err := ton.Connect(ctx, cfg.Ledger.LiteConfigURL, cfg.Ledger.ConnectTimeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to TON")
		}
		defer tonClient.Close()

		tonLedger, err := ledger.NewTONLedger(tonClient.API, ledger.TONConfig{
			Network:             cfg.Ledger.Network,
			Seed:                cfg.Ledger.Seed,
			BadgeContract:       cfg.Ledger.BadgeContract,
			LeaderboardContract: cfg.Ledger.LeaderboardContract,
			MessageAmount:       cfg.Ledger.MessageAmount,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize ledger")
		}
		chainLedger = tonLedger
	} else {
		logger.Info().Msg("Ledger disabled, badges are kept off-chain only")
	}
	ready.ledger = chainLedger

	m := metrics.New(prometheus.DefaultRegisterer)

	// Движок прогрессии
	policy, err := badge.ParsePolicy(cfg.Progression.Policy)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid progression policy")
	}
	catalog, err := badge.NewCatalog(cfg.Progression.SpecialistChain)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid badge catalog")
	}
	engine := badge.NewEngine(catalog, policy)

	// Сервисы
	leaderboardSvc := leaderboard.NewService(leaderboard.Deps{
		Store:    store,
		Ledger:   chainLedger,
		Cache:    leaderboardCache,
		CacheTTL: cfg.Redis.LeaderboardTTL,
		Metrics:  m,
	})
	submissionSvc := submissionService.New(submissionService.Deps{
		Store:         store,
		Scorer:        scoring.NewHeuristicScorer(),
		Engine:        engine,
		Ledger:        chainLedger,
		Metrics:       m,
		Leaderboard:   leaderboardSvc,
		LedgerTimeout: cfg.Ledger.Timeout,
		SyncBudget:    cfg.Ledger.SyncBudget,
	})
	userSvc := userService.NewUserService(store)
	challengeSvc := challengeService.NewChallengeService(store)

	logger.Info().Msg("Services initialized")

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(m))
	router.Use(middleware.HandleErrors())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "X-Admin-Key", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	if cfg.Server.AdminAPIKey == "" {
		logger.Warn().Msg("ADMIN_API_KEY is empty, admin routes are open")
	}
	admin := middleware.RequireAdmin(cfg.Server.AdminAPIKey)
	limit := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware()

	v1 := router.Group("/api/v1")
	userHTTP.NewUserHandler(userSvc).RegisterRoutes(v1)
	challengeHTTP.NewChallengeHandler(challengeSvc).RegisterRoutes(v1, admin)
	submissionHTTP.NewSubmissionHandler(submissionSvc).RegisterRoutes(v1, limit, admin)
	leaderboardHTTP.NewLeaderboardHandler(leaderboardSvc).RegisterRoutes(v1)

	setupHealthRoutes(router, ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func setupHealthRoutes(router *gin.Engine, ready *readiness) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if ready.postgres != nil {
			if err := ready.postgres.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "postgres unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		if ready.redis != nil {
			if err := ready.redis.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "redis unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		// леджер не блокирует готовность: синхронизация догоняет позже
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
			"ledger":    ready.ledger.Status(ctx),
		})
	})
}
