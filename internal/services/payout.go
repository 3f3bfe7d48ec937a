package services

import (
	"fmt"

	"tlb/internal/model"
	"tlb/internal/prize"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// PayoutService is idempotency bookkeeping around prize payment. Executing the
// payment itself belongs to the external reconciliation collaborator; this
// service only guarantees a wallet is never offered a pay action twice.
type PayoutService struct {
	Store RecordStore
	Agg   *AggregatorService
}

// Initiate records a pending payout for a top-ranked wallet of an ended
// tournament. The aggregate is recomputed first so the amount can never drift
// from recorded revenue.
func (s *PayoutService) Initiate(day, wallet string) (*model.PayoutRecord, error) {
	if !common.IsHexAddress(wallet) {
		return nil, fmt.Errorf("%w: bad wallet address", ErrValidation)
	}
	// Same canonical form as ingest, so case variants of one address share
	// one payout slot.
	wallet = common.HexToAddress(wallet).Hex()

	tournament, err := s.Store.GetTournament(day)
	if err != nil {
		return nil, err
	}
	if tournament == nil {
		return nil, ErrTournamentNotFound
	}
	if tournament.IsActive {
		return nil, fmt.Errorf("%w: tournament still running", ErrValidation)
	}

	existing, err := s.Store.PayoutForWallet(day, wallet)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != model.PayoutFailed {
		return nil, fmt.Errorf("%w: payout already %s", ErrPayoutNotEligible, existing.Status)
	}
	if existing != nil {
		// failed -> pending retry on the existing record
		ok, err := s.Store.TransitionPayout(existing.Reference, model.PayoutFailed, model.PayoutPending, "")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidTransition
		}
		return s.Store.GetPayout(existing.Reference)
	}

	stats, err := s.Agg.Recompute(day)
	if err != nil {
		return nil, err
	}
	if !stats.Persisted {
		return nil, fmt.Errorf("%w: aggregates not persisted", ErrStoreWrite)
	}

	rank, err := s.rankOfWallet(day, wallet)
	if err != nil {
		return nil, err
	}
	amount := prize.PayoutForRank(stats.Distribution, rank)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: rank %d is outside the paytable", ErrPayoutNotEligible, rank)
	}

	rec := &model.PayoutRecord{
		Reference:     uuid.NewString(),
		TournamentDay: day,
		WalletAddress: wallet,
		Rank:          rank,
		Amount:        amount,
		Status:        model.PayoutPending,
	}
	created, err := s.Store.CreatePayout(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreWrite, err)
	}
	if !created {
		return nil, fmt.Errorf("%w: payout race lost", ErrPayoutNotEligible)
	}
	return rec, nil
}

// Transition applies one lifecycle step, conditioned on the current status so
// replays are harmless.
func (s *PayoutService) Transition(reference string, to model.PayoutStatus, txnHash string) (*model.PayoutRecord, error) {
	rec, err := s.Store.GetPayout(reference)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrPayoutNotFound
	}
	if !rec.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, rec.Status, to)
	}

	ok, err := s.Store.TransitionPayout(reference, rec.Status, to, txnHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: status moved concurrently", ErrInvalidTransition)
	}
	return s.Store.GetPayout(reference)
}

func (s *PayoutService) rankOfWallet(day, wallet string) (int, error) {
	recs, err := s.Store.AllByRank(day)
	if err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if rec.WalletAddress == wallet {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: wallet has no score record", ErrPayoutNotEligible)
}
