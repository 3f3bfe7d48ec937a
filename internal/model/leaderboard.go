package model

import (
	"encoding/json"
	"log"
	"time"
)

// LeaderboardEntry is a derived read-only view; it is always recomputed from
// ScoreRecord rows or the rank cache, never persisted on its own.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	PlayerID      string `json:"player_id"`
	DisplayName   string `json:"display_name"`
	WalletAddress string `json:"wallet_address,omitempty"`
	Score         int64  `json:"score"`
}

type PageSource string

const (
	SourceCache PageSource = "cache"
	SourceStore PageSource = "store"
)

type LeaderboardPage struct {
	TournamentDay string             `json:"tournament_day"`
	Entries       []LeaderboardEntry `json:"entries"`
	Offset        int                `json:"offset"`
	Limit         int                `json:"limit"`
	TotalCount    int64              `json:"total_count"`
	Source        PageSource         `json:"source"`
	FetchedAt     time.Time          `json:"fetched_at"`
}

type PrizePool struct {
	BaseAmount      float64 `json:"base_amount"`
	GuaranteeAmount float64 `json:"guarantee_amount"`
	Percentage      float64 `json:"percentage"`
}

type AdminFee struct {
	Amount        float64 `json:"amount"`
	Percentage    float64 `json:"percentage"`
	GuaranteeCost float64 `json:"guarantee_cost"`
	NetResult     float64 `json:"net_result"`
}

// PrizeDistribution is the deterministic output of the prize calculator.
type PrizeDistribution struct {
	TotalRevenue     float64   `json:"total_revenue"`
	BasePool         float64   `json:"base_pool"`
	AdminFee         AdminFee  `json:"admin_fee"`
	GuaranteeApplied bool      `json:"guarantee_applied"`
	Percentages      []float64 `json:"percentages"`
	Payouts          []float64 `json:"payouts"`
}

type TournamentStats struct {
	TournamentDay    string            `json:"tournament_day"`
	IsActive         bool              `json:"is_active"`
	TotalPlayers     int64             `json:"total_players"`
	TotalGames       int64             `json:"total_games"`
	TotalCollected   float64           `json:"total_collected"`
	PrizePool        PrizePool         `json:"prize_pool"`
	AdminFee         AdminFee          `json:"admin_fee"`
	GuaranteeApplied bool              `json:"guarantee_applied"`
	Distribution     PrizeDistribution `json:"distribution"`
	Persisted        bool              `json:"persisted"`
	ComputedAt       time.Time         `json:"computed_at"`
}

func (ts *TournamentStats) Marshal() []byte {
	marshalled, err := json.Marshal(ts)
	if err != nil {
		log.Println(err)
		return nil
	}

	return marshalled
}

func UnmarshalTournamentStats(data []byte) *TournamentStats {
	var ts TournamentStats
	err := json.Unmarshal(data, &ts)
	if err != nil {
		log.Println(err)
		return nil
	}

	return &ts
}
