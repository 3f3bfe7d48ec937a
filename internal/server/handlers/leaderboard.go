package handlers

import (
	"context"
	"strconv"
	"time"

	"tlb/internal/constants"
	"tlb/wires"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

func RegisterLeaderboard(router *gin.Engine, ctx context.Context) {
	router.GET("/leaderboard", getLeaderboard)
}

func getLeaderboard(c *gin.Context) {
	day := c.DefaultQuery("tournament_day", constants.DayOf(time.Now()))
	if !constants.ValidDay(day) {
		c.JSON(400, gin.H{"success": false, "error": "invalid tournament_day"})
		return
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(400, gin.H{"success": false, "error": "invalid offset"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 || limit > maxPageLimit {
		c.JSON(400, gin.H{"success": false, "error": "invalid limit"})
		return
	}

	page, err := wires.Instance.Leaderboard.GetPage(day, offset, limit)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "error": "error fetching leaderboard"})
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"players": page.Entries,
		"pagination": gin.H{
			"offset":   page.Offset,
			"limit":    page.Limit,
			"has_more": int64(page.Offset+len(page.Entries)) < page.TotalCount,
			"total":    page.TotalCount,
		},
		"source":     page.Source,
		"fetched_at": page.FetchedAt,
	})
}
