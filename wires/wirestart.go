package wires

import (
	"tlb/config"
	"tlb/internal/cache"
	"tlb/internal/prize"
	"tlb/internal/redis"
	"tlb/internal/services"
	"tlb/internal/store"
	"tlb/internal/stream"
)

// Wires holds the process-wide dependency graph, constructed once at startup.
type Wires struct {
	Store       *store.Store
	Cache       *cache.RankCache
	Ingest      *services.IngestService
	Leaderboard *services.LeaderboardService
	Aggregator  *services.AggregatorService
	Payouts     *services.PayoutService
	Hub         *stream.Hub
}

var Instance *Wires

func Init(config *config.Config) {
	recordStore := store.Init(config)
	rankCache := cache.NewRankCache(redis.RedisClient)
	calc := prize.NewCalculator(config.Prize)

	leaderboard := &services.LeaderboardService{Store: recordStore, Cache: rankCache}
	aggregator := &services.AggregatorService{Store: recordStore, Cache: rankCache, Calc: calc}

	Instance = &Wires{
		Store:       recordStore,
		Cache:       rankCache,
		Ingest:      &services.IngestService{Store: recordStore, Cache: rankCache, EntryFee: config.Prize.EntryFee},
		Leaderboard: leaderboard,
		Aggregator:  aggregator,
		Payouts:     &services.PayoutService{Store: recordStore, Agg: aggregator},
		Hub:         stream.NewHub(leaderboard, aggregator, rankCache, config.Notifier),
	}
}
