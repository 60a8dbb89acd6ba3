package app

import (
	"prepmate_backend/internal/config"
	"prepmate_backend/internal/middleware"
	"prepmate_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.POST("/register", c.auth.Register)
		api.POST("/login", c.auth.Login)
		api.GET("/health", c.health.HealthCheck)

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(cfg))
		{
			authed.GET("/profile", c.auth.GetProfile)
			authed.PUT("/profile", c.auth.UpdateProfile)
			authed.GET("/profile/stats", c.dashboard.GetProfileStats)

			quiz := authed.Group("/quiz")
			{
				quiz.POST("/start", c.quiz.StartQuiz)
				quiz.POST("/submit", c.quiz.SubmitQuiz)
				quiz.GET("/results/:id", c.quiz.GetResult)
				quiz.GET("/history", c.quiz.GetHistory)
				quiz.POST("/explain", c.quiz.Explain)
				quiz.POST("/study-guide", c.quiz.StudyGuide)
			}

			interview := authed.Group("/interview")
			{
				interview.POST("/question", c.interview.GetQuestion)
				interview.POST("/grade", c.interview.GradeAnswer)
				interview.POST("/grade-video", c.interview.GradeVideo)
				interview.GET("/history", c.interview.GetHistory)
			}

			authed.GET("/dashboard/tip", c.dashboard.GetTip)
			authed.GET("/leaderboard", c.dashboard.GetLeaderboard)
		}
	}
}
