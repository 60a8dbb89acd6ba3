package controller

import (
	"prepmate_backend/internal/service"
	"prepmate_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	StatsService *service.StatsService
}

func NewDashboardController(statsService *service.StatsService) *DashboardController {
	return &DashboardController{StatsService: statsService}
}

// GetTip returns the personalized tutor tip for the dashboard. This never
// fails: the service absorbs every error into a static message.
func (c *DashboardController) GetTip(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	tip := c.StatsService.WeakestSubjectTip(ctx.Request.Context(), claims.UserID)
	util.Success(ctx, gin.H{"tip": tip})
}

func (c *DashboardController) GetProfileStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.StatsService.ProfileStatistics(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

func (c *DashboardController) GetLeaderboard(ctx *gin.Context) {
	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	entries, err := c.StatsService.Leaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}
