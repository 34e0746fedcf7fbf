package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/bootstrap"
	"github.com/HoonDongKang/daily-ranking-redis/internal/config"
	"github.com/HoonDongKang/daily-ranking-redis/internal/jobs"
	"github.com/HoonDongKang/daily-ranking-redis/internal/logging"
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"
	"github.com/HoonDongKang/daily-ranking-redis/internal/repository"
	"github.com/HoonDongKang/daily-ranking-redis/internal/service"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	TotalPlayers = 50
	TotalRounds  = 500
	BatchSize    = 200
	MaxDiffMs    = 3000
)

// collectingArchive buffers records for one bulk insert at the end
type collectingArchive struct {
	mu      sync.Mutex
	records []models.GameRecord
}

func (a *collectingArchive) Submit(record models.GameRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Msg("starting seeder for today's timer game board")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game time zone")
	}
	clock := clockwork.NewRealClock()

	store, err := bootstrap.OpenStore(cfg, clock, bootstrap.SeederPools)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Redis.Driver).Msg("failed to open store")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Redis.Driver).Msg("store connected")

	var postgresRepo *repository.PostgresRepository
	var archive service.RecordArchive
	collected := &collectingArchive{}
	if cfg.Database.Enabled {
		db, err := bootstrap.InitPostgres(cfg, bootstrap.SeederPools)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
		}
		postgresRepo = repository.NewPostgresRepository(db)
		defer postgresRepo.Close()

		if err := postgresRepo.AutoMigrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("database migrations completed")
		archive = collected
	}

	nicknameService := service.NewNicknameService(store, clock, loc, nil)
	rankingService := service.NewRankingService(store, nicknameService, archive, clock, service.RankingConfig{
		Size:              cfg.Game.RankingSize,
		ExpireDaily:       cfg.Game.ExpireRanking,
		RequireRegistered: cfg.Game.RequireRegisteredNickname,
		Location:          loc,
	}, nil)

	ctx := context.Background()

	log.Info().Int("players", TotalPlayers).Msg("reserving nicknames")
	players, err := reservePlayers(ctx, nicknameService, TotalPlayers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to reserve nicknames")
	}

	log.Info().Int("rounds", TotalRounds).Msg("playing rounds")
	startTime := time.Now()
	sim := jobs.NewSimulator(rankingService, players, clock, jobs.SimulatorConfig{MaxDiff: MaxDiffMs})
	recorded := sim.Play(ctx, TotalRounds)
	duration := time.Since(startTime)
	log.Info().
		Int("recorded", recorded).
		Dur("duration", duration).
		Float64("rounds_per_sec", float64(recorded)/duration.Seconds()).
		Msg("rounds played")

	if postgresRepo != nil {
		if err := seedPostgres(ctx, postgresRepo, collected.records); err != nil {
			log.Fatal().Err(err).Msg("failed to archive rounds")
		}
	}

	// Show today's board
	top, err := rankingService.Top(ctx, cfg.Game.RankingSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read ranking")
	}
	log.Info().Str("day", rankingService.Today()).Int("entries", len(top)).Msg("seeding completed")
	for i, entry := range top {
		log.Info().
			Int("rank", i+1).
			Str("nickname", entry.Nickname).
			Float64("diff_ms", entry.Diff).
			Msg("board entry")
	}
}

// reservePlayers registers count fake nicknames for today, skipping collisions
func reservePlayers(ctx context.Context, nicknames *service.NicknameService, count int) ([]string, error) {
	players := make([]string, 0, count)
	for attempts := 0; len(players) < count; attempts++ {
		if attempts >= count*10 {
			return nil, fmt.Errorf("reserved only %d of %d nicknames", len(players), count)
		}

		nickname, err := nicknames.Reserve(ctx, gofakeit.Username())
		if errors.Is(err, apperrors.ErrNicknameDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, nickname)
	}
	return players, nil
}

// seedPostgres inserts archived rounds in batches
func seedPostgres(ctx context.Context, repo *repository.PostgresRepository, records []models.GameRecord) error {
	startTime := time.Now()

	if err := repo.BulkInsertRecords(ctx, records, BatchSize); err != nil {
		return fmt.Errorf("bulk insert failed: %w", err)
	}

	log.Info().
		Int("records", len(records)).
		Dur("duration", time.Since(startTime)).
		Msg("archived rounds to PostgreSQL")
	return nil
}
