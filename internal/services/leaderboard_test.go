package services

import (
	"testing"
	"time"

	"tlb/internal/cache"
	"tlb/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheEntry(rec model.ScoreRecord) cache.Entry {
	return cache.Entry{PlayerID: rec.PlayerID, Score: rec.HighestScore, AchievedAt: rec.FirstAchievedAt}
}

func seedScores(t *testing.T, st *fakeStore, day string, n int) {
	t.Helper()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rec := &model.ScoreRecord{
			PlayerID:        playerID(i),
			TournamentDay:   day,
			DisplayName:     "Player " + playerID(i),
			HighestScore:    int64(1000 - i*10),
			GamesPlayed:     1,
			EntryFee:        1,
			FirstAchievedAt: base.Add(time.Duration(i) * time.Second),
		}
		created, err := st.CreateScore(rec)
		require.NoError(t, err)
		require.True(t, created)
	}
}

func playerID(i int) string {
	return string(rune('a'+i/26)) + string(rune('a'+i%26))
}

func warmCache(t *testing.T, st *fakeStore, fc *fakeCache, day string) {
	t.Helper()
	recs, err := st.AllByRank(day)
	require.NoError(t, err)
	entries := make([]cache.Entry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, cacheEntry(rec))
	}
	require.NoError(t, fc.Rebuild(day, entries, 0))
}

func TestGetPageFromWarmCache(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()
	seedScores(t, st, testDay, 5)
	warmCache(t, st, fc, testDay)

	svc := &LeaderboardService{Store: st, Cache: fc}
	page, err := svc.GetPage(testDay, 0, 10)
	require.NoError(t, err)

	assert.Equal(t, model.SourceCache, page.Source)
	assert.EqualValues(t, 5, page.TotalCount)
	require.Len(t, page.Entries, 5)
	assert.Equal(t, 1, page.Entries[0].Rank)
	assert.EqualValues(t, 1000, page.Entries[0].Score)
	assert.Equal(t, "Player aa", page.Entries[0].DisplayName)
}

func TestGetPageFallsBackOnColdCache(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()
	seedScores(t, st, testDay, 5)

	svc := &LeaderboardService{Store: st, Cache: fc}
	page, err := svc.GetPage(testDay, 0, 10)
	require.NoError(t, err)

	assert.Equal(t, model.SourceStore, page.Source)
	require.Len(t, page.Entries, 5)

	// The miss repopulated the cache, so the next read is a hit.
	assert.Equal(t, 1, fc.rebuilds)
	page, err = svc.GetPage(testDay, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, page.Source)
}

func TestGetPageFallsBackOnCacheError(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()
	seedScores(t, st, testDay, 3)
	fc.down = true

	svc := &LeaderboardService{Store: st, Cache: fc}
	page, err := svc.GetPage(testDay, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, model.SourceStore, page.Source)
	assert.Len(t, page.Entries, 3)
}

func TestCacheAndStoreAgreeOnOrder(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()
	seedScores(t, st, testDay, 12)

	// Two tied scores: the earlier achiever must rank first on both paths.
	base := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	for i, id := range []string{"tie-late", "tie-early"} {
		_, err := st.CreateScore(&model.ScoreRecord{
			PlayerID:        id,
			TournamentDay:   testDay,
			HighestScore:    500,
			FirstAchievedAt: base.Add(time.Duration(1-i) * time.Minute),
		})
		require.NoError(t, err)
	}

	svc := &LeaderboardService{Store: st, Cache: fc}
	storePage, err := svc.GetPage(testDay, 0, 20)
	require.NoError(t, err)
	require.Equal(t, model.SourceStore, storePage.Source)

	cachePage, err := svc.GetPage(testDay, 0, 20)
	require.NoError(t, err)
	require.Equal(t, model.SourceCache, cachePage.Source)

	require.Len(t, cachePage.Entries, len(storePage.Entries))
	for i := range storePage.Entries {
		assert.Equal(t, storePage.Entries[i].PlayerID, cachePage.Entries[i].PlayerID, "rank %d", i+1)
		assert.Equal(t, storePage.Entries[i].Score, cachePage.Entries[i].Score, "rank %d", i+1)
	}

	idxEarly, idxLate := -1, -1
	for i, entry := range cachePage.Entries {
		switch entry.PlayerID {
		case "tie-early":
			idxEarly = i
		case "tie-late":
			idxLate = i
		}
	}
	require.NotEqual(t, -1, idxEarly)
	require.NotEqual(t, -1, idxLate)
	assert.Less(t, idxEarly, idxLate)
}

func TestGetPageHealsAfterCacheFlush(t *testing.T) {
	st := newFakeStore()
	st.addTournament(testDay, true)
	fc := newFakeCache()
	seedScores(t, st, testDay, 5)
	warmCache(t, st, fc, testDay)

	svc := &LeaderboardService{Store: st, Cache: fc}
	ingest := &IngestService{Store: st, Cache: fc, EntryFee: 1}

	// Cache dies mid-tournament, then a brand-new player submits. The zset is
	// recreated with that single member, which must not pass for a complete
	// leaderboard.
	fc.flush()
	_, err := ingest.SubmitScore(SubmitScoreRequest{
		TournamentDay: testDay,
		PlayerID:      "newcomer",
		Score:         2000,
	})
	require.NoError(t, err)

	page, err := svc.GetPage(testDay, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, model.SourceStore, page.Source)
	assert.EqualValues(t, 6, page.TotalCount)
	require.Len(t, page.Entries, 6)
	assert.Equal(t, "newcomer", page.Entries[0].PlayerID)

	// The fallback rebuilt the cache with everyone, so the next read hits.
	page, err = svc.GetPage(testDay, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, page.Source)
	require.Len(t, page.Entries, 6)
}

func TestPaginationIsStable(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()
	seedScores(t, st, testDay, 25)
	warmCache(t, st, fc, testDay)

	svc := &LeaderboardService{Store: st, Cache: fc}

	seen := make(map[string]bool)
	rank := 0
	for offset := 0; offset < 25; offset += 10 {
		page, err := svc.GetPage(testDay, offset, 10)
		require.NoError(t, err)
		for _, entry := range page.Entries {
			rank++
			assert.Equal(t, rank, entry.Rank)
			assert.False(t, seen[entry.PlayerID], "player %s repeated", entry.PlayerID)
			seen[entry.PlayerID] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestGetPageEmptyDay(t *testing.T) {
	st := newFakeStore()
	fc := newFakeCache()

	svc := &LeaderboardService{Store: st, Cache: fc}
	page, err := svc.GetPage(testDay, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, model.SourceStore, page.Source)
	assert.Empty(t, page.Entries)
	assert.EqualValues(t, 0, page.TotalCount)
}
