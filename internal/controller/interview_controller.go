package controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"prepmate_backend/internal/config"
	"prepmate_backend/internal/service"
	"prepmate_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InterviewController struct {
	InterviewService *service.InterviewService
	Config           config.InterviewConfig
}

func NewInterviewController(interviewService *service.InterviewService, cfg config.InterviewConfig) *InterviewController {
	return &InterviewController{
		InterviewService: interviewService,
		Config:           cfg,
	}
}

type InterviewQuestionRequest struct {
	Subject string `json:"subject" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

func (c *InterviewController) GetQuestion(ctx *gin.Context) {
	var req InterviewQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.InterviewService.GetQuestion(ctx.Request.Context(), req.Subject, req.Level)
	if err != nil {
		util.ServiceUnavailable(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"question": question})
}

type GradeAnswerRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Level      string `json:"level" binding:"required"`
	Question   string `json:"question" binding:"required"`
	UserAnswer string `json:"userAnswer" binding:"required"`
}

func (c *InterviewController) GradeAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GradeAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.InterviewService.GradeTextTurn(ctx.Request.Context(), claims.UserID, req.Subject, req.Level, req.Question, req.UserAnswer)
	if err != nil {
		util.ServiceUnavailable(ctx, err.Error())
		return
	}

	util.Success(ctx, outcome)
}

// GradeVideo accepts a multipart recording, stages it in a temp file, and
// hands it to the grading pipeline. The temp file is removed on every
// exit path.
func (c *InterviewController) GradeVideo(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "No video file provided")
		return
	}
	if fileHeader.Size > c.Config.MaxUploadMBytes*1024*1024 {
		util.Error(ctx, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Video exceeds the %dMB upload limit", c.Config.MaxUploadMBytes))
		return
	}

	subject := ctx.PostForm("subject")
	level := ctx.PostForm("level")
	question := ctx.PostForm("question")
	if subject == "" || level == "" || question == "" {
		util.BadRequest(ctx, "subject, level and question are required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	mimeType, err := util.ValidateMimeType(src, []string{"video/", "application/octet-stream"})
	src.Close()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := os.MkdirAll(c.Config.TempDir, 0755); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = ".webm"
	}
	tempPath := filepath.Join(c.Config.TempDir, fmt.Sprintf("user_%d_%s%s", claims.UserID, uuid.New().String(), ext))
	if err := ctx.SaveUploadedFile(fileHeader, tempPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer service.CleanupTempVideo(tempPath)

	outcome, err := c.InterviewService.GradeVideoTurn(ctx.Request.Context(), claims.UserID, subject, level, question, tempPath, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrVideoTooLong):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrVideoProcessing), errors.Is(err, util.ErrVideoPollTimeout):
			util.Error(ctx, http.StatusUnprocessableEntity, err.Error())
		default:
			util.ServiceUnavailable(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, outcome)
}

func (c *InterviewController) GetHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.InterviewService.History(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, results)
}
