package services

import (
	"log"
	"time"

	"tlb/internal/cache"
	"tlb/internal/model"
)

// LeaderboardService is the read path. It owns no state: every page is served
// from the rank cache when it is warm and consistent, otherwise from the
// durable store with an opportunistic cache rebuild on the way out.
type LeaderboardService struct {
	Store RecordStore
	Cache RankCache
}

func (s *LeaderboardService) GetPage(day string, offset, limit int) (*model.LeaderboardPage, error) {
	page := &model.LeaderboardPage{
		TournamentDay: day,
		Offset:        offset,
		Limit:         limit,
		FetchedAt:     time.Now().UTC(),
	}

	if entries, total, ok := s.fromCache(day, offset, limit); ok {
		page.Entries = entries
		page.TotalCount = total
		page.Source = model.SourceCache
		return page, nil
	}

	recs, err := s.Store.PageByRank(day, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.Store.CountScores(day)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(recs))
	for i, rec := range recs {
		entries = append(entries, model.LeaderboardEntry{
			Rank:          offset + i + 1,
			PlayerID:      rec.PlayerID,
			DisplayName:   rec.DisplayName,
			WalletAddress: rec.WalletAddress,
			Score:         rec.HighestScore,
		})
	}
	page.Entries = entries
	page.TotalCount = total
	page.Source = model.SourceStore

	s.writeBack(day)
	return page, nil
}

// fromCache serves a page from the zset. Any cache-layer error or a drifted
// member count reports a miss; the caller falls back to the store.
func (s *LeaderboardService) fromCache(day string, offset, limit int) ([]model.LeaderboardEntry, int64, bool) {
	count, err := s.Cache.Count(day)
	if err != nil {
		log.Println("rank cache degraded, falling back to store:", err)
		return nil, 0, false
	}
	if count == 0 {
		return nil, 0, false
	}

	expected, err := s.Cache.ExpectedCount(day)
	if err != nil || expected != count {
		return nil, 0, false
	}

	cached, err := s.Cache.ZRangeDesc(day, int64(offset), int64(limit))
	if err != nil {
		log.Println("rank cache degraded, falling back to store:", err)
		return nil, 0, false
	}

	playerIDs := make([]string, 0, len(cached))
	for _, entry := range cached {
		playerIDs = append(playerIDs, entry.PlayerID)
	}

	// One batched metadata fetch for the whole page, never per entry.
	var byID map[string]model.ScoreRecord
	if len(playerIDs) > 0 {
		byID, err = s.Store.ScoresByPlayerIDs(day, playerIDs)
		if err != nil {
			return nil, 0, false
		}
	}

	entries := make([]model.LeaderboardEntry, 0, len(cached))
	for i, entry := range cached {
		meta := byID[entry.PlayerID]
		entries = append(entries, model.LeaderboardEntry{
			Rank:          offset + i + 1,
			PlayerID:      entry.PlayerID,
			DisplayName:   meta.DisplayName,
			WalletAddress: meta.WalletAddress,
			Score:         entry.Score,
		})
	}
	return entries, count, true
}

// writeBack repopulates the cache from the durable store after a miss.
// Best effort: a failure leaves the next read on the store path again.
func (s *LeaderboardService) writeBack(day string) {
	recs, err := s.Store.AllByRank(day)
	if err != nil {
		log.Println("cache write-back skipped, store read failed:", err)
		return
	}
	if len(recs) == 0 {
		return
	}

	entries := make([]cache.Entry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, cache.Entry{
			PlayerID:   rec.PlayerID,
			Score:      rec.HighestScore,
			AchievedAt: rec.FirstAchievedAt,
		})
	}
	if err := s.Cache.Rebuild(day, entries, 0); err != nil {
		log.Println("cache write-back failed:", err)
	}
}
