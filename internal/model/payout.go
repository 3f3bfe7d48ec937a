package model

import "time"

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutSent      PayoutStatus = "sent"
	PayoutConfirmed PayoutStatus = "confirmed"
	PayoutFailed    PayoutStatus = "failed"
)

var PayoutStatusValue = map[string]PayoutStatus{
	"pending":   PayoutPending,
	"sent":      PayoutSent,
	"confirmed": PayoutConfirmed,
	"failed":    PayoutFailed,
}

// CanTransitionTo enforces the one-directional payout lifecycle. The only
// backward edge is failed -> pending (operator retry).
func (s PayoutStatus) CanTransitionTo(next PayoutStatus) bool {
	switch s {
	case PayoutPending:
		return next == PayoutSent || next == PayoutFailed
	case PayoutSent:
		return next == PayoutConfirmed || next == PayoutFailed
	case PayoutFailed:
		return next == PayoutPending
	default:
		return false
	}
}

// PayoutRecord prevents double payment: a wallet with a sent or confirmed
// record for a day is never offered a pay action again.
type PayoutRecord struct {
	Reference     string       `json:"reference" gorm:"primaryKey"`
	TournamentDay string       `json:"tournament_day" gorm:"index:idx_payout_day_wallet,unique"`
	WalletAddress string       `json:"wallet_address" gorm:"index:idx_payout_day_wallet,unique"`
	Rank          int          `json:"rank"`
	Amount        float64      `json:"amount"`
	Status        PayoutStatus `json:"status" gorm:"type:varchar(16);default:'pending'"`
	TxnHash       string       `json:"txn_hash"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}
