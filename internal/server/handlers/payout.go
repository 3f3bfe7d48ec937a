package handlers

import (
	"context"
	"errors"
	"log"

	"tlb/internal/model"
	"tlb/internal/services"
	"tlb/wires"

	"github.com/gin-gonic/gin"
)

type initiatePayoutRequest struct {
	TournamentDay string `json:"tournament_day"`
	WalletAddress string `json:"wallet_address"`
}

type payoutStatusRequest struct {
	Status  string `json:"status"`
	TxnHash string `json:"txn_hash"`
}

func RegisterPayout(router *gin.Engine, ctx context.Context) {
	payouts := router.Group("/payout")
	{
		payouts.POST("/initiate", initiatePayout)
		payouts.POST("/:reference/status", transitionPayout)
	}
}

func initiatePayout(c *gin.Context) {
	var req initiatePayoutRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	rec, err := wires.Instance.Payouts.Initiate(req.TournamentDay, req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(400, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, services.ErrTournamentNotFound):
			c.JSON(404, gin.H{"success": false, "error": "tournament not found"})
		case errors.Is(err, services.ErrPayoutNotEligible):
			c.JSON(409, gin.H{"success": false, "error": err.Error()})
		default:
			log.Println("Error initiating payout:", err)
			c.JSON(500, gin.H{"success": false, "error": "error initiating payout"})
		}
		return
	}

	c.JSON(200, gin.H{"success": true, "payout": rec})
}

func transitionPayout(c *gin.Context) {
	reference := c.Param("reference")

	var req payoutStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	status, ok := model.PayoutStatusValue[req.Status]
	if !ok {
		c.JSON(400, gin.H{"success": false, "error": "unknown payout status"})
		return
	}

	rec, err := wires.Instance.Payouts.Transition(reference, status, req.TxnHash)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPayoutNotFound):
			c.JSON(404, gin.H{"success": false, "error": "payout not found"})
		case errors.Is(err, services.ErrInvalidTransition):
			c.JSON(409, gin.H{"success": false, "error": err.Error()})
		default:
			log.Println("Error transitioning payout:", err)
			c.JSON(500, gin.H{"success": false, "error": "error updating payout"})
		}
		return
	}

	c.JSON(200, gin.H{"success": true, "payout": rec})
}
