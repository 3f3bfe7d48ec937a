package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"tlb/internal/constants"
	"tlb/internal/services"
	"tlb/wires"

	"github.com/gin-gonic/gin"
)

func RegisterStats(router *gin.Engine, ctx context.Context) {
	router.GET("/tournament/stats", getStats)
}

func getStats(c *gin.Context) {
	day := c.DefaultQuery("tournament_day", constants.DayOf(time.Now()))
	if !constants.ValidDay(day) {
		c.JSON(400, gin.H{"success": false, "error": "invalid tournament_day"})
		return
	}

	stats, err := wires.Instance.Aggregator.Stats(day)
	if err != nil {
		if errors.Is(err, services.ErrTournamentNotFound) {
			c.JSON(404, gin.H{"success": false, "error": "tournament not found"})
			return
		}
		log.Println("Error fetching stats:", err)
		c.JSON(500, gin.H{"success": false, "error": "error fetching stats"})
		return
	}

	c.JSON(200, gin.H{
		"success":           true,
		"tournament_day":    stats.TournamentDay,
		"is_active":         stats.IsActive,
		"total_players":     stats.TotalPlayers,
		"total_games":       stats.TotalGames,
		"total_collected":   stats.TotalCollected,
		"prize_pool":        stats.PrizePool,
		"admin_fee":         stats.AdminFee,
		"guarantee_applied": stats.GuaranteeApplied,
		"payouts":           stats.Distribution.Payouts,
		"persisted":         stats.Persisted,
		"computed_at":       stats.ComputedAt,
	})
}
