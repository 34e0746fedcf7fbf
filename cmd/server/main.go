package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/api"
	"github.com/HoonDongKang/daily-ranking-redis/internal/bootstrap"
	"github.com/HoonDongKang/daily-ranking-redis/internal/config"
	"github.com/HoonDongKang/daily-ranking-redis/internal/logging"
	"github.com/HoonDongKang/daily-ranking-redis/internal/metrics"
	"github.com/HoonDongKang/daily-ranking-redis/internal/repository"
	"github.com/HoonDongKang/daily-ranking-redis/internal/service"
	"github.com/HoonDongKang/daily-ranking-redis/internal/websocket"
	"github.com/HoonDongKang/daily-ranking-redis/internal/worker"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game time zone")
	}
	clock := clockwork.NewRealClock()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, err := bootstrap.OpenStore(cfg, clock, bootstrap.ServerPools)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Redis.Driver).Msg("failed to open store")
	}
	log.Info().Str("driver", cfg.Redis.Driver).Msg("store connected")

	// Optional PostgreSQL archive with its write-behind worker pool
	var (
		postgresRepo *repository.PostgresRepository
		workerPool   *worker.WorkerPool
		archive      service.RecordArchive
		history      *service.HistoryService
		database     service.Pinger
	)
	if cfg.Database.Enabled {
		db, err := bootstrap.InitPostgres(cfg, bootstrap.ServerPools)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
		}
		postgresRepo = repository.NewPostgresRepository(db)
		if err := postgresRepo.AutoMigrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("PostgreSQL archive ready")

		workerPool = worker.NewWorkerPool(cfg.Worker.Count, cfg.Worker.QueueSize, postgresRepo, m)
		workerPool.Start()

		archive = workerPool
		history = service.NewHistoryService(postgresRepo)
		database = postgresRepo
	}

	nicknameService := service.NewNicknameService(store, clock, loc, m)
	rankingService := service.NewRankingService(store, nicknameService, archive, clock, service.RankingConfig{
		Size:              cfg.Game.RankingSize,
		ExpireDaily:       cfg.Game.ExpireRanking,
		RequireRegistered: cfg.Game.RequireRegisteredNickname,
		Location:          loc,
	}, m)
	healthService := service.NewHealthService(store, database)

	hub := websocket.NewHub(rankingService)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	app := api.NewServer(api.Dependencies{
		Nicknames:    nicknameService,
		Ranking:      rankingService,
		History:      history,
		Health:       healthService,
		Hub:          hub,
		Gatherer:     reg,
		AllowOrigins: cfg.Server.AllowOrigins,
		AccessLog:    true,

		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	// Graceful shutdown: stop HTTP, flush archive writes, close connections
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("shutting down server")
		hubCancel()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}

		if workerPool != nil {
			if err := workerPool.Shutdown(30 * time.Second); err != nil {
				log.Error().Err(err).Msg("worker pool shutdown error")
			}
		}
		if postgresRepo != nil {
			if err := postgresRepo.Close(); err != nil {
				log.Error().Err(err).Msg("error closing PostgreSQL")
			}
		}
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("error closing store")
		}
	}()

	port := cfg.Server.Port
	log.Info().Int("port", port).Str("timezone", loc.String()).Int("ranking_size", cfg.Game.RankingSize).Msg("server starting")
	if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	<-shutdownDone
	log.Info().Msg("server shutdown complete")
}
