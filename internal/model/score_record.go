package model

import "time"

// ScoreRecord is the authoritative per-player, per-tournament row. One row per
// (player, day); every later submission for the pair mutates it in place.
// Version backs the conditional update on the write path.
type ScoreRecord struct {
	PlayerID         string    `json:"player_id" gorm:"primaryKey"`
	TournamentDay    string    `json:"tournament_day" gorm:"primaryKey"`
	WalletAddress    string    `json:"wallet_address" gorm:"index"`
	DisplayName      string    `json:"display_name"`
	HighestScore     int64     `json:"highest_score" gorm:"default:0"`
	GamesPlayed      int       `json:"games_played" gorm:"default:0"`
	ContinuesUsed    int       `json:"continues_used" gorm:"default:0"`
	ContinuePayments float64   `json:"continue_payments" gorm:"default:0"`
	EntryFee         float64   `json:"entry_fee" gorm:"default:0"`
	VerificationTier int       `json:"verification_tier" gorm:"default:0"`
	FirstAchievedAt  time.Time `json:"first_achieved_at"`
	Version          int64     `json:"-" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Submission is the idempotency ledger for score submissions. The primary key
// is the client-supplied idempotency key, so a structurally identical retry
// hits the unique constraint instead of double-counting.
type Submission struct {
	IdempotencyKey string    `json:"idempotency_key" gorm:"primaryKey"`
	PlayerID       string    `json:"player_id" gorm:"index"`
	TournamentDay  string    `json:"tournament_day" gorm:"index"`
	Score          int64     `json:"score"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
