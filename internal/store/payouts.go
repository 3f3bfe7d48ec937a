package store

import (
	"errors"

	"tlb/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) GetPayout(reference string) (*model.PayoutRecord, error) {
	var rec model.PayoutRecord
	err := s.DB.Where("reference = ?", reference).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) PayoutForWallet(day, wallet string) (*model.PayoutRecord, error) {
	var rec model.PayoutRecord
	err := s.DB.Where("tournament_day = ? AND wallet_address = ?", day, wallet).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreatePayout inserts the pending record; the unique (day, wallet) index makes
// a second initiation a no-op, reported as false.
func (s *Store) CreatePayout(rec *model.PayoutRecord) (bool, error) {
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TransitionPayout moves a payout from one status to another, conditioned on
// the current status so a replayed webhook cannot rewind the lifecycle.
func (s *Store) TransitionPayout(reference string, from, to model.PayoutStatus, txnHash string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if txnHash != "" {
		updates["txn_hash"] = txnHash
	}

	res := s.DB.Model(&model.PayoutRecord{}).
		Where("reference = ? AND status = ?", reference, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
