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

func RegisterScore(router *gin.Engine, ctx context.Context) {
	router.POST("/score/submit", submitScore)
}

func submitScore(c *gin.Context) {
	var req services.SubmitScoreRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if req.TournamentDay == "" {
		req.TournamentDay = constants.DayOf(time.Now())
	}

	result, err := wires.Instance.Ingest.SubmitScore(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(400, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, services.ErrTournamentNotActive):
			c.JSON(409, gin.H{"success": false, "error": "tournament is not active"})
		default:
			log.Println("Error submitting score:", err)
			c.JSON(500, gin.H{"success": false, "error": "error recording score"})
		}
		return
	}

	c.JSON(200, gin.H{
		"success":           true,
		"is_duplicate":      result.IsDuplicate,
		"is_new_high_score": result.IsNewHighScore,
		"previous_high":     result.PreviousHigh,
		"current_high":      result.CurrentHigh,
	})
}
