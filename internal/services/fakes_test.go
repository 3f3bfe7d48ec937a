package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"tlb/internal/cache"
	"tlb/internal/model"
	"tlb/internal/store"
)

var errCacheDown = errors.New("cache down")

type fakeStore struct {
	mu          sync.Mutex
	tournaments map[string]*model.Tournament
	scores      map[string]*model.ScoreRecord
	submissions map[string]bool
	payouts     map[string]*model.PayoutRecord

	failSaveAggregates bool
	conflictsLeft      int
}

var _ RecordStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments: make(map[string]*model.Tournament),
		scores:      make(map[string]*model.ScoreRecord),
		submissions: make(map[string]bool),
		payouts:     make(map[string]*model.PayoutRecord),
	}
}

func scoreKey(playerID, day string) string {
	return playerID + "|" + day
}

func (f *fakeStore) addTournament(day string, active bool) {
	f.tournaments[day] = &model.Tournament{Day: day, IsActive: active}
}

func (f *fakeStore) GetTournament(day string) (*model.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[day]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) EnsureTournament(day string) (*model.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tournaments[day]; !ok {
		f.tournaments[day] = &model.Tournament{Day: day, IsActive: true}
	}
	copied := *f.tournaments[day]
	return &copied, nil
}

func (f *fakeStore) EndTournament(day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[day]
	if !ok || !t.IsActive {
		return false, nil
	}
	t.IsActive = false
	return true, nil
}

func (f *fakeStore) SaveAggregates(t *model.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaveAggregates {
		return errors.New("disk full")
	}
	stored, ok := f.tournaments[t.Day]
	if !ok {
		return errors.New("missing tournament")
	}
	stored.TotalPlayers = t.TotalPlayers
	stored.TotalGames = t.TotalGames
	stored.TotalCollected = t.TotalCollected
	stored.TotalPrizePool = t.TotalPrizePool
	stored.AdminFee = t.AdminFee
	stored.GuaranteeAmount = t.GuaranteeAmount
	return nil
}

func (f *fakeStore) GetScore(playerID, day string) (*model.ScoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.scores[scoreKey(playerID, day)]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeStore) CreateScore(rec *model.ScoreRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := scoreKey(rec.PlayerID, rec.TournamentDay)
	if _, ok := f.scores[key]; ok {
		return false, nil
	}
	copied := *rec
	f.scores[key] = &copied
	return true, nil
}

func (f *fakeStore) UpdateScoreVersioned(rec *model.ScoreRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return store.ErrVersionConflict
	}
	stored, ok := f.scores[scoreKey(rec.PlayerID, rec.TournamentDay)]
	if !ok || stored.Version != rec.Version {
		return store.ErrVersionConflict
	}
	copied := *rec
	copied.Version = rec.Version + 1
	f.scores[scoreKey(rec.PlayerID, rec.TournamentDay)] = &copied
	return nil
}

func (f *fakeStore) ranked(day string) []model.ScoreRecord {
	var recs []model.ScoreRecord
	for _, rec := range f.scores {
		if rec.TournamentDay == day {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].HighestScore != recs[j].HighestScore {
			return recs[i].HighestScore > recs[j].HighestScore
		}
		return recs[i].FirstAchievedAt.Before(recs[j].FirstAchievedAt)
	})
	return recs
}

func (f *fakeStore) PageByRank(day string, offset, limit int) ([]model.ScoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.ranked(day)
	if offset >= len(recs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(recs) {
		end = len(recs)
	}
	return recs[offset:end], nil
}

func (f *fakeStore) AllByRank(day string) ([]model.ScoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ranked(day), nil
}

func (f *fakeStore) CountScores(day string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.ranked(day))), nil
}

func (f *fakeStore) ScoresByPlayerIDs(day string, playerIDs []string) (map[string]model.ScoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byID := make(map[string]model.ScoreRecord)
	for _, id := range playerIDs {
		if rec, ok := f.scores[scoreKey(id, day)]; ok {
			byID[id] = *rec
		}
	}
	return byID, nil
}

func (f *fakeStore) SubmissionExists(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submissions[key], nil
}

func (f *fakeStore) RecordSubmission(sub *model.Submission) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submissions[sub.IdempotencyKey] {
		return false, nil
	}
	f.submissions[sub.IdempotencyKey] = true
	return true, nil
}

func (f *fakeStore) Aggregates(day string) (players, games int64, revenue float64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.scores {
		if rec.TournamentDay != day {
			continue
		}
		players++
		games += int64(rec.GamesPlayed)
		revenue += rec.EntryFee + rec.ContinuePayments
	}
	return players, games, revenue, nil
}

func (f *fakeStore) GetPayout(reference string) (*model.PayoutRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.payouts[reference]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeStore) PayoutForWallet(day, wallet string) (*model.PayoutRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.payouts {
		if rec.TournamentDay == day && rec.WalletAddress == wallet {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreatePayout(rec *model.PayoutRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.payouts {
		if existing.TournamentDay == rec.TournamentDay && existing.WalletAddress == rec.WalletAddress {
			return false, nil
		}
	}
	copied := *rec
	f.payouts[rec.Reference] = &copied
	return true, nil
}

func (f *fakeStore) TransitionPayout(reference string, from, to model.PayoutStatus, txnHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.payouts[reference]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	if txnHash != "" {
		rec.TxnHash = txnHash
	}
	return true, nil
}

type fakeCache struct {
	mu           sync.Mutex
	entries      map[string]map[string]cache.Entry
	expected     map[string]int64
	markers      map[string]int64
	statsMarkers map[string]int64
	statsBlobs   map[string][]byte

	down      bool
	zaddCalls int
	rebuilds  int
}

var _ RankCache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:      make(map[string]map[string]cache.Entry),
		expected:     make(map[string]int64),
		markers:      make(map[string]int64),
		statsMarkers: make(map[string]int64),
		statsBlobs:   make(map[string][]byte),
	}
}

func (f *fakeCache) ZAdd(day string, entry cache.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errCacheDown
	}
	f.zaddCalls++
	if f.entries[day] == nil {
		f.entries[day] = make(map[string]cache.Entry)
	}
	f.entries[day][entry.PlayerID] = entry
	return nil
}

func (f *fakeCache) ZRangeDesc(day string, offset, limit int64) ([]cache.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errCacheDown
	}
	var entries []cache.Entry
	for _, entry := range f.entries[day] {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return cache.EncodeRankScore(entries[i].Score, entries[i].AchievedAt) >
			cache.EncodeRankScore(entries[j].Score, entries[j].AchievedAt)
	})
	if offset >= int64(len(entries)) {
		return nil, nil
	}
	end := offset + limit
	if end > int64(len(entries)) {
		end = int64(len(entries))
	}
	return entries[offset:end], nil
}

func (f *fakeCache) Count(day string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return 0, errCacheDown
	}
	return int64(len(f.entries[day])), nil
}

func (f *fakeCache) Rebuild(day string, entries []cache.Entry, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errCacheDown
	}
	f.rebuilds++
	members := make(map[string]cache.Entry, len(entries))
	for _, entry := range entries {
		members[entry.PlayerID] = entry
	}
	f.entries[day] = members
	f.expected[day] = int64(len(entries))
	return nil
}

// IncrExpectedCount mirrors the guarded increment: a missing meta entry is
// left missing so a flushed cache cannot pass the consistency check.
func (f *fakeCache) IncrExpectedCount(day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errCacheDown
	}
	if _, ok := f.expected[day]; !ok {
		return nil
	}
	f.expected[day]++
	return nil
}

// flush mimics a full redis flush: every key is gone at once.
func (f *fakeCache) flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string]map[string]cache.Entry)
	f.expected = make(map[string]int64)
	f.markers = make(map[string]int64)
	f.statsMarkers = make(map[string]int64)
	f.statsBlobs = make(map[string][]byte)
}

func (f *fakeCache) SetExpectedCount(day string, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expected[day] = count
	return nil
}

func (f *fakeCache) ExpectedCount(day string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return 0, errCacheDown
	}
	return f.expected[day], nil
}

func (f *fakeCache) BumpMarker(day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errCacheDown
	}
	f.markers[day]++
	return nil
}

func (f *fakeCache) Marker(day string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markers[day], nil
}

func (f *fakeCache) BumpStatsMarker(day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsMarkers[day]++
	return nil
}

func (f *fakeCache) StatsMarker(day string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statsMarkers[day], nil
}

func (f *fakeCache) SetStats(day string, data []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsBlobs[day] = data
	return nil
}

func (f *fakeCache) Stats(day string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errCacheDown
	}
	return f.statsBlobs[day], nil
}

func (f *fakeCache) ExpireDay(day string, ttl time.Duration) error {
	return nil
}
