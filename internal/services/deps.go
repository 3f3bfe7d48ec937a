package services

import (
	"errors"
	"time"

	"tlb/internal/cache"
	"tlb/internal/model"
)

// Service errors. Cache failures never appear here: the read path degrades to
// the store and only logs, while write paths surface ErrStoreWrite because an
// unrecorded score must not be reported as accepted.
var (
	ErrValidation          = errors.New("validation failed")
	ErrTournamentNotActive = errors.New("tournament is not active")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrStoreWrite          = errors.New("store write failed")
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrPayoutNotEligible   = errors.New("wallet not eligible for payout")
	ErrInvalidTransition   = errors.New("invalid payout status transition")
)

// RecordStore is the durable source of truth, satisfied by store.Store and by
// in-memory fakes in tests.
type RecordStore interface {
	GetTournament(day string) (*model.Tournament, error)
	EnsureTournament(day string) (*model.Tournament, error)
	EndTournament(day string) (bool, error)
	SaveAggregates(t *model.Tournament) error

	GetScore(playerID, day string) (*model.ScoreRecord, error)
	CreateScore(rec *model.ScoreRecord) (bool, error)
	UpdateScoreVersioned(rec *model.ScoreRecord) error
	PageByRank(day string, offset, limit int) ([]model.ScoreRecord, error)
	AllByRank(day string) ([]model.ScoreRecord, error)
	CountScores(day string) (int64, error)
	ScoresByPlayerIDs(day string, playerIDs []string) (map[string]model.ScoreRecord, error)
	SubmissionExists(key string) (bool, error)
	RecordSubmission(sub *model.Submission) (bool, error)
	Aggregates(day string) (players, games int64, revenue float64, err error)

	GetPayout(reference string) (*model.PayoutRecord, error)
	PayoutForWallet(day, wallet string) (*model.PayoutRecord, error)
	CreatePayout(rec *model.PayoutRecord) (bool, error)
	TransitionPayout(reference string, from, to model.PayoutStatus, txnHash string) (bool, error)
}

// RankCache is the disposable projection, satisfied by cache.RankCache.
type RankCache interface {
	ZAdd(day string, entry cache.Entry) error
	ZRangeDesc(day string, offset, limit int64) ([]cache.Entry, error)
	Count(day string) (int64, error)
	Rebuild(day string, entries []cache.Entry, ttl time.Duration) error
	IncrExpectedCount(day string) error
	SetExpectedCount(day string, count int64) error
	ExpectedCount(day string) (int64, error)
	BumpMarker(day string) error
	Marker(day string) (int64, error)
	BumpStatsMarker(day string) error
	StatsMarker(day string) (int64, error)
	SetStats(day string, data []byte, ttl time.Duration) error
	Stats(day string) ([]byte, error)
	ExpireDay(day string, ttl time.Duration) error
}
