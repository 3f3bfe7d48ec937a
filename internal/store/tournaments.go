package store

import (
	"errors"
	"time"

	"tlb/internal/constants"
	"tlb/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) GetTournament(day string) (*model.Tournament, error) {
	var t model.Tournament
	err := s.DB.Where("day = ?", day).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EnsureTournament creates the day's tournament if it does not exist yet.
// Concurrent callers race on the primary key; the loser reads the winner's row.
func (s *Store) EnsureTournament(day string) (*model.Tournament, error) {
	start, err := time.Parse(constants.DayLayout, day)
	if err != nil {
		return nil, err
	}

	t := model.Tournament{
		Day:       day,
		StartTime: start,
		EndTime:   start.Add(24 * time.Hour),
		IsActive:  true,
	}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&t).Error; err != nil {
		return nil, err
	}
	return s.GetTournament(day)
}

// EndTournament flips active to false exactly once. A second call finds no
// matching row and reports false without touching anything.
func (s *Store) EndTournament(day string) (bool, error) {
	res := s.DB.Model(&model.Tournament{}).
		Where("day = ? AND is_active = ?", day, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SaveAggregates persists the aggregator's output. Only aggregate columns are
// written so the lifecycle fields cannot be clobbered by a stale recompute.
func (s *Store) SaveAggregates(t *model.Tournament) error {
	return s.DB.Model(&model.Tournament{}).Where("day = ?", t.Day).
		Updates(map[string]interface{}{
			"total_players":    t.TotalPlayers,
			"total_games":      t.TotalGames,
			"total_collected":  t.TotalCollected,
			"total_prize_pool": t.TotalPrizePool,
			"admin_fee":        t.AdminFee,
			"guarantee_amount": t.GuaranteeAmount,
		}).Error
}
