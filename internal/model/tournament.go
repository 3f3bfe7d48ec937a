package model

import "time"

// Tournament is one day-long competition cycle. Aggregate fields are only
// written by the aggregator; everything else is set at creation and when the
// tournament is ended.
type Tournament struct {
	Day             string    `json:"day" gorm:"primaryKey;column:day"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	IsActive        bool      `json:"is_active"`
	TotalPlayers    int64     `json:"total_players" gorm:"default:0"`
	TotalGames      int64     `json:"total_games" gorm:"default:0"`
	TotalCollected  float64   `json:"total_collected" gorm:"default:0"`
	TotalPrizePool  float64   `json:"total_prize_pool" gorm:"default:0"`
	AdminFee        float64   `json:"admin_fee" gorm:"default:0"`
	GuaranteeAmount float64   `json:"guarantee_amount" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
