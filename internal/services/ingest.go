package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"tlb/internal/cache"
	"tlb/internal/constants"
	"tlb/internal/model"
	"tlb/internal/store"

	"github.com/ethereum/go-ethereum/common"
)

// maxUpdateRetries bounds the optimistic-concurrency loop on the score row.
const maxUpdateRetries = 3

type SubmitScoreRequest struct {
	TournamentDay  string  `json:"tournament_day"`
	PlayerID       string  `json:"player_id"`
	DisplayName    string  `json:"display_name"`
	WalletAddress  string  `json:"wallet_address"`
	Score          int64   `json:"score"`
	UsedContinue   bool    `json:"used_continue"`
	ContinueAmount float64 `json:"continue_amount"`
	IdempotencyKey string  `json:"idempotency_key"`
}

type SubmitScoreResult struct {
	Accepted       bool  `json:"accepted"`
	IsDuplicate    bool  `json:"is_duplicate"`
	IsNewHighScore bool  `json:"is_new_high_score"`
	PreviousHigh   int64 `json:"previous_high"`
	CurrentHigh    int64 `json:"current_high"`
}

// IngestService is the write path: it validates a submission, records it
// durably and updates the rank cache as a side effect.
type IngestService struct {
	Store    RecordStore
	Cache    RankCache
	EntryFee float64
}

func (s *IngestService) SubmitScore(req SubmitScoreRequest) (*SubmitScoreResult, error) {
	if req.Score < 0 {
		return nil, fmt.Errorf("%w: score must be non-negative", ErrValidation)
	}
	if req.Score > cache.MaxScore {
		return nil, fmt.Errorf("%w: score exceeds maximum %d", ErrValidation, cache.MaxScore)
	}
	if req.PlayerID == "" {
		return nil, fmt.Errorf("%w: missing player id", ErrValidation)
	}
	if !constants.ValidDay(req.TournamentDay) {
		return nil, fmt.Errorf("%w: bad tournament day %q", ErrValidation, req.TournamentDay)
	}
	if req.WalletAddress != "" {
		if !common.IsHexAddress(req.WalletAddress) {
			return nil, fmt.Errorf("%w: bad wallet address", ErrValidation)
		}
		req.WalletAddress = common.HexToAddress(req.WalletAddress).Hex()
	}

	tournament, err := s.Store.GetTournament(req.TournamentDay)
	if err != nil {
		return nil, err
	}
	if tournament == nil || !tournament.IsActive {
		return nil, ErrTournamentNotActive
	}

	if req.IdempotencyKey != "" {
		seen, err := s.Store.SubmissionExists(req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStoreWrite, err)
		}
		if seen {
			return s.duplicateResult(req)
		}
	}

	now := time.Now().UTC()
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		rec, err := s.Store.GetScore(req.PlayerID, req.TournamentDay)
		if err != nil {
			return nil, err
		}

		if rec == nil {
			rec = &model.ScoreRecord{
				PlayerID:        req.PlayerID,
				TournamentDay:   req.TournamentDay,
				WalletAddress:   req.WalletAddress,
				DisplayName:     req.DisplayName,
				HighestScore:    req.Score,
				GamesPlayed:     1,
				EntryFee:        s.EntryFee,
				FirstAchievedAt: now,
			}
			if req.UsedContinue {
				rec.ContinuesUsed = 1
				rec.ContinuePayments = req.ContinueAmount
			}

			created, err := s.Store.CreateScore(rec)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrStoreWrite, err)
			}
			if !created {
				// Lost the insert race against another submission from the
				// same player; retry as an update.
				continue
			}

			return s.accepted(req, rec, &SubmitScoreResult{
				Accepted:       true,
				IsNewHighScore: true,
				PreviousHigh:   0,
				CurrentHigh:    req.Score,
			}, true), nil
		}

		previousHigh := rec.HighestScore
		newHigh := req.Score > previousHigh
		if newHigh {
			rec.HighestScore = req.Score
			rec.FirstAchievedAt = now
		}
		rec.GamesPlayed++
		if req.UsedContinue {
			rec.ContinuesUsed++
			rec.ContinuePayments += req.ContinueAmount
		}

		err = s.Store.UpdateScoreVersioned(rec)
		if errors.Is(err, store.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStoreWrite, err)
		}

		return s.accepted(req, rec, &SubmitScoreResult{
			Accepted:       true,
			IsNewHighScore: newHigh,
			PreviousHigh:   previousHigh,
			CurrentHigh:    rec.HighestScore,
		}, false), nil
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts", ErrStoreWrite, maxUpdateRetries)
}

// accepted runs the post-write bookkeeping. The ledger row is recorded only
// once the score is durable: a failed write must not burn the idempotency key,
// otherwise the client's retry would be answered as a duplicate of a score
// that was never stored. A ledger write failure here is logged, not fatal, as
// the score row already holds the max and a replay cannot lower it.
func (s *IngestService) accepted(req SubmitScoreRequest, rec *model.ScoreRecord, result *SubmitScoreResult, newMember bool) *SubmitScoreResult {
	if req.IdempotencyKey != "" {
		if _, err := s.Store.RecordSubmission(&model.Submission{
			IdempotencyKey: req.IdempotencyKey,
			PlayerID:       req.PlayerID,
			TournamentDay:  req.TournamentDay,
			Score:          req.Score,
		}); err != nil {
			log.Println("idempotency ledger write failed:", err)
		}
	}
	s.afterWrite(req.TournamentDay, rec, result.IsNewHighScore, newMember)
	return result
}

// afterWrite performs the cache side effects of an accepted submission. The
// marker is always bumped so pollers see freshness; the zset is only touched
// on a new high score since a non-improving submission cannot change rank
// order. Cache failures degrade, never fail the submission.
func (s *IngestService) afterWrite(day string, rec *model.ScoreRecord, newHigh, newMember bool) {
	if newHigh {
		entry := cache.Entry{PlayerID: rec.PlayerID, Score: rec.HighestScore, AchievedAt: rec.FirstAchievedAt}
		if err := s.Cache.ZAdd(day, entry); err != nil {
			log.Println("rank cache degraded, zadd failed:", err)
		} else if newMember {
			if err := s.Cache.IncrExpectedCount(day); err != nil {
				log.Println("rank cache degraded, meta count failed:", err)
			}
		}
	}
	if err := s.Cache.BumpMarker(day); err != nil {
		log.Println("rank cache degraded, marker bump failed:", err)
	}
}

// duplicateResult answers a replayed idempotency key without re-mutating
// state; the stored high is reported so the caller still sees current truth.
func (s *IngestService) duplicateResult(req SubmitScoreRequest) (*SubmitScoreResult, error) {
	result := &SubmitScoreResult{Accepted: false, IsDuplicate: true}
	rec, err := s.Store.GetScore(req.PlayerID, req.TournamentDay)
	if err == nil && rec != nil {
		result.PreviousHigh = rec.HighestScore
		result.CurrentHigh = rec.HighestScore
	}
	return result, nil
}
