package server

import (
	"context"
	"tlb/internal/server/handlers"

	"github.com/gin-gonic/gin"
)

func RegisterVersion(router *gin.Engine, ctx context.Context) {
	handlers.RegisterLeaderboard(router, ctx)
	handlers.RegisterScore(router, ctx)
	handlers.RegisterStats(router, ctx)
	handlers.RegisterPayout(router, ctx)
	handlers.RegisterStream(router, ctx)
	handlers.RegisterHealth(router, ctx)
}
