package controller

import (
	"net/http"
	"prepmate_backend/internal/service"
	"prepmate_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB     *gorm.DB
	Gemini *service.GeminiService
}

func NewHealthController(db *gorm.DB, gemini *service.GeminiService) *HealthController {
	return &HealthController{DB: db, Gemini: gemini}
}

func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	gemini := "up"
	if !c.Gemini.Available() {
		gemini = "unconfigured"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
			"gemini":   gemini,
		},
	})
}
