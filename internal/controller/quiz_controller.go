package controller

import (
	"errors"
	"net/http"
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/service"
	"prepmate_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

type StartQuizRequest struct {
	Subject string `json:"subject" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

// questionView is a QuizQuestion with the correct letter stripped; the
// answer key stays server-side until submission.
type questionView struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	OptionA  string `json:"option_a"`
	OptionB  string `json:"option_b"`
	OptionC  string `json:"option_c"`
	OptionD  string `json:"option_d"`
}

func toQuestionViews(questions []model.QuizQuestion) []questionView {
	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{
			ID:       q.ID,
			Question: q.Question,
			OptionA:  q.OptionA,
			OptionB:  q.OptionB,
			OptionC:  q.OptionC,
			OptionD:  q.OptionD,
		}
	}
	return views
}

func (c *QuizController) StartQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questions, err := c.QuizService.StartQuiz(ctx.Request.Context(), claims.UserID, req.Subject, req.Level)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"subject":        req.Subject,
		"level":          req.Level,
		"totalQuestions": len(questions),
		"questions":      toQuestionViews(questions),
	})
}

type SubmitQuizRequest struct {
	// Answers are keyed "q_<id>" with the chosen letter as value.
	Answers map[string]string `json:"answers" binding:"required"`
}

func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.QuizService.SubmitQuiz(ctx.Request.Context(), claims.UserID, req.Answers)
	if err != nil {
		if errors.Is(err, util.ErrQuizSessionExpired) {
			util.Error(ctx, http.StatusGone, "Quiz session expired or not found. Please start a new quiz.")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, outcome)
}

func (c *QuizController) GetResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resultID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid result id")
		return
	}

	bundle, err := c.QuizService.Review(uint(resultID), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrResultNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, bundle)
}

func (c *QuizController) GetHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.QuizService.History(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, results)
}

type ExplainRequest struct {
	Question      string `json:"question" binding:"required"`
	UserAnswer    string `json:"userAnswer" binding:"required"`
	CorrectAnswer string `json:"correctAnswer" binding:"required"`
}

func (c *QuizController) Explain(ctx *gin.Context) {
	var req ExplainRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	explanation, err := c.QuizService.ExplainAnswer(ctx.Request.Context(), req.Question, req.UserAnswer, req.CorrectAnswer)
	if err != nil {
		util.ServiceUnavailable(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"explanation": explanation})
}

type StudyGuideRequest struct {
	Subject string `json:"subject" binding:"required"`
	Level   string `json:"level"`
}

func (c *QuizController) StudyGuide(ctx *gin.Context) {
	var req StudyGuideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.Level == "" {
		req.Level = "Intermediate"
	}

	guide, err := c.QuizService.StudyGuide(ctx.Request.Context(), req.Subject, req.Level)
	if err != nil {
		util.ServiceUnavailable(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"guide": guide})
}
