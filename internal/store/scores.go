package store

import (
	"errors"

	"tlb/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict signals a lost race on the conditional score update; the
// caller re-reads and retries.
var ErrVersionConflict = errors.New("score record version conflict")

func (s *Store) GetScore(playerID, day string) (*model.ScoreRecord, error) {
	var rec model.ScoreRecord
	err := s.DB.Where("player_id = ? AND tournament_day = ?", playerID, day).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateScore inserts the first record for (player, day). Returns false when
// another submission won the race, in which case the caller falls back to the
// conditional update path.
func (s *Store) CreateScore(rec *model.ScoreRecord) (bool, error) {
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateScoreVersioned applies a read-modify-write conditioned on the version
// read. RowsAffected == 0 means the row moved underneath us.
func (s *Store) UpdateScoreVersioned(rec *model.ScoreRecord) error {
	res := s.DB.Model(&model.ScoreRecord{}).
		Where("player_id = ? AND tournament_day = ? AND version = ?",
			rec.PlayerID, rec.TournamentDay, rec.Version).
		Updates(map[string]interface{}{
			"highest_score":     rec.HighestScore,
			"games_played":      rec.GamesPlayed,
			"continues_used":    rec.ContinuesUsed,
			"continue_payments": rec.ContinuePayments,
			"first_achieved_at": rec.FirstAchievedAt,
			"version":           rec.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// PageByRank is the durable-store twin of the cache read: score descending,
// earliest achieved first on ties.
func (s *Store) PageByRank(day string, offset, limit int) ([]model.ScoreRecord, error) {
	var recs []model.ScoreRecord
	err := s.DB.Where("tournament_day = ?", day).
		Order("highest_score DESC").
		Order("first_achieved_at ASC").
		Offset(offset).Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Store) AllByRank(day string) ([]model.ScoreRecord, error) {
	var recs []model.ScoreRecord
	err := s.DB.Where("tournament_day = ?", day).
		Order("highest_score DESC").
		Order("first_achieved_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Store) CountScores(day string) (int64, error) {
	var count int64
	err := s.DB.Model(&model.ScoreRecord{}).Where("tournament_day = ?", day).Count(&count).Error
	return count, err
}

// ScoresByPlayerIDs batch-fetches display metadata for a page in one query.
func (s *Store) ScoresByPlayerIDs(day string, playerIDs []string) (map[string]model.ScoreRecord, error) {
	var recs []model.ScoreRecord
	err := s.DB.Where("tournament_day = ? AND player_id IN ?", day, playerIDs).Find(&recs).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.ScoreRecord, len(recs))
	for _, rec := range recs {
		byID[rec.PlayerID] = rec
	}
	return byID, nil
}

// SubmissionExists reports whether an idempotency key is already in the
// ledger.
func (s *Store) SubmissionExists(key string) (bool, error) {
	var count int64
	err := s.DB.Model(&model.Submission{}).Where("idempotency_key = ?", key).Count(&count).Error
	return count > 0, err
}

// RecordSubmission inserts into the idempotency ledger. Returns false when the
// key was already recorded.
func (s *Store) RecordSubmission(sub *model.Submission) (bool, error) {
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(sub)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type aggregateRow struct {
	Players int64
	Games   int64
	Revenue float64
}

// Aggregates computes player count, total games and total revenue (entry fees
// plus continue payments) for a day in a single query.
func (s *Store) Aggregates(day string) (players, games int64, revenue float64, err error) {
	var row aggregateRow
	err = s.DB.Model(&model.ScoreRecord{}).
		Where("tournament_day = ?", day).
		Select("COUNT(*) AS players, COALESCE(SUM(games_played), 0) AS games, COALESCE(SUM(entry_fee + continue_payments), 0) AS revenue").
		Scan(&row).Error
	if err != nil {
		return 0, 0, 0, err
	}
	return row.Players, row.Games, row.Revenue, nil
}
