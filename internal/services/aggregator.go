package services

import (
	"log"
	"time"

	"tlb/internal/constants"
	"tlb/internal/model"
	"tlb/internal/prize"

	"github.com/go-co-op/gocron/v2"
)

// endedDayTTL bounds cache memory after a tournament closes; the record store
// stays authoritative so expiry is safe.
const endedDayTTL = 48 * time.Hour

// AggregatorService recomputes tournament aggregates and the derived prize
// distribution, periodically and on demand. Re-running with unchanged inputs
// produces identical output.
type AggregatorService struct {
	Store RecordStore
	Cache RankCache
	Calc  *prize.Calculator
}

func (s *AggregatorService) Recompute(day string) (*model.TournamentStats, error) {
	tournament, err := s.Store.GetTournament(day)
	if err != nil {
		return nil, err
	}
	if tournament == nil {
		return nil, ErrTournamentNotFound
	}

	players, games, revenue, err := s.Store.Aggregates(day)
	if err != nil {
		return nil, err
	}

	dist := s.Calc.Compute(revenue)
	stats := &model.TournamentStats{
		TournamentDay:  day,
		IsActive:       tournament.IsActive,
		TotalPlayers:   players,
		TotalGames:     games,
		TotalCollected: revenue,
		PrizePool: model.PrizePool{
			BaseAmount:      dist.BasePool,
			GuaranteeAmount: dist.AdminFee.GuaranteeCost,
			Percentage:      100 - dist.AdminFee.Percentage,
		},
		AdminFee:         dist.AdminFee,
		GuaranteeApplied: dist.GuaranteeApplied,
		Distribution:     dist,
		ComputedAt:       time.Now().UTC(),
	}

	tournament.TotalPlayers = players
	tournament.TotalGames = games
	tournament.TotalCollected = revenue
	tournament.TotalPrizePool = dist.BasePool
	tournament.AdminFee = dist.AdminFee.Amount
	tournament.GuaranteeAmount = dist.AdminFee.GuaranteeCost

	// A failed write-back still returns the computed numbers for display;
	// the Persisted flag tells callers not to treat them as a payout basis.
	if err := s.Store.SaveAggregates(tournament); err != nil {
		log.Println("aggregate persistence failed for", day, ":", err)
		return stats, nil
	}
	stats.Persisted = true

	if data := stats.Marshal(); data != nil {
		if err := s.Cache.SetStats(day, data, 0); err != nil {
			log.Println("stats cache degraded:", err)
		}
	}
	if err := s.Cache.BumpStatsMarker(day); err != nil {
		log.Println("stats marker bump failed:", err)
	}

	return stats, nil
}

// Stats prefers the cached snapshot and recomputes on a cold cache.
func (s *AggregatorService) Stats(day string) (*model.TournamentStats, error) {
	data, err := s.Cache.Stats(day)
	if err != nil {
		log.Println("stats cache degraded, recomputing:", err)
	} else if data != nil {
		if stats := model.UnmarshalTournamentStats(data); stats != nil {
			return stats, nil
		}
	}
	return s.Recompute(day)
}

// RolloverDay closes the previous tournament exactly once, lets its cache keys
// age out, and opens today's tournament.
func (s *AggregatorService) RolloverDay(now time.Time) error {
	today := constants.DayOf(now)
	yesterday := constants.DayOf(now.Add(-24 * time.Hour))

	ended, err := s.Store.EndTournament(yesterday)
	if err != nil {
		return err
	}
	if ended {
		if err := s.Cache.ExpireDay(yesterday, endedDayTTL); err != nil {
			log.Println("cache expiry failed for", yesterday, ":", err)
		}
		log.Println("Tournament ended:", yesterday)
	}

	if _, err := s.Store.EnsureTournament(today); err != nil {
		return err
	}
	return nil
}

// StartScheduler runs the periodic recompute for the active day and the daily
// rollover.
func (s *AggregatorService) StartScheduler() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			day := constants.DayOf(time.Now())
			if _, err := s.Recompute(day); err != nil {
				log.Println("scheduled recompute failed for", day, ":", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 30))),
		gocron.NewTask(func() {
			if err := s.RolloverDay(time.Now()); err != nil {
				log.Println("tournament rollover failed:", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
