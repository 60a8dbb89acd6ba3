package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/util"
	"prepmate_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinels recorded in the review map when a question has no usable
// submitted answer. The review page shows these verbatim.
const (
	NoAnswerText      = "No Answer"
	InvalidOptionText = "Invalid Option"
)

// QuizSessionStore holds the in-progress quiz between start and submit.
// Load reports a missing or expired session as ErrQuizSessionExpired.
type QuizSessionStore interface {
	Save(ctx context.Context, userID uint, session *model.QuizSession) error
	Load(ctx context.Context, userID uint) (*model.QuizSession, error)
	Clear(ctx context.Context, userID uint) error
}

// QuizResultStore persists graded quizzes and serves them back for the
// review and history pages.
type QuizResultStore interface {
	Create(result *model.QuizResult) error
	FindByID(id uint) (*model.QuizResult, error)
	FindByUser(userID uint) ([]model.QuizResult, error)
}

type QuizService struct {
	Gemini        *GeminiService
	Sessions      QuizSessionStore
	Results       QuizResultStore
	QuestionCount int
}

func NewQuizService(gemini *GeminiService, sessions QuizSessionStore, results QuizResultStore, questionCount int) *QuizService {
	return &QuizService{
		Gemini:        gemini,
		Sessions:      sessions,
		Results:       results,
		QuestionCount: questionCount,
	}
}

// StartQuiz generates a fresh quiz and stores it in the user's session
// until submission. Generation itself cannot fail (a fallback quiz is
// served instead), but a session-store failure does surface: a quiz that
// cannot be graded later must not be handed out.
func (s *QuizService) StartQuiz(ctx context.Context, userID uint, subject, level string) ([]model.QuizQuestion, error) {
	questions := s.Gemini.GenerateQuiz(ctx, subject, level, s.QuestionCount)

	session := &model.QuizSession{
		Subject:   subject,
		Level:     level,
		Questions: questions,
	}
	if err := s.Sessions.Save(ctx, userID, session); err != nil {
		return nil, fmt.Errorf("save quiz session: %w", err)
	}

	return questions, nil
}

// GradeSubmission scores answers against questions. Answers are keyed
// "q_<id>"; a missing key counts as wrong and is recorded as "No Answer".
// Submitted letters are upper-cased before comparison so "b" matches "B".
// The review map carries the full option text the user picked, because
// the review page redisplays the options, not the letters.
func GradeSubmission(questions []model.QuizQuestion, answers map[string]string) (score int, review map[string]string) {
	review = make(map[string]string, len(questions))

	for _, question := range questions {
		letter := strings.ToUpper(strings.TrimSpace(answers[fmt.Sprintf("q_%d", question.ID)]))

		answerText := NoAnswerText
		if letter != "" {
			answerText = question.OptionText(letter)
			if answerText == "" {
				answerText = InvalidOptionText
			}
		}
		review[question.Question] = answerText

		if letter == question.CorrectAnswerLetter {
			score++
		}
	}

	return score, review
}

// SubmitOutcome is what the submit endpoint reports back. Notice is set
// when the result could not be persisted; grading still succeeded and the
// flow completes.
type SubmitOutcome struct {
	ResultID uint   `json:"resultId"`
	Score    int    `json:"score"`
	Total    int    `json:"total"`
	Notice   string `json:"notice,omitempty"`
}

// SubmitQuiz grades the session-held quiz against the submitted answers,
// persists the result with snapshots for later review, and clears the
// session. A missing session (expired TTL, double submit) surfaces as
// ErrQuizSessionExpired.
func (s *QuizService) SubmitQuiz(ctx context.Context, userID uint, answers map[string]string) (*SubmitOutcome, error) {
	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	score, review := GradeSubmission(session.Questions, answers)

	quizData, err := json.Marshal(session.Questions)
	if err != nil {
		return nil, fmt.Errorf("marshal quiz snapshot: %w", err)
	}
	userAnswers, err := json.Marshal(review)
	if err != nil {
		return nil, fmt.Errorf("marshal answer snapshot: %w", err)
	}

	result := &model.QuizResult{
		UserID:      userID,
		Subject:     session.Subject,
		Level:       session.Level,
		Score:       score,
		Total:       len(session.Questions),
		QuizData:    string(quizData),
		UserAnswers: string(userAnswers),
		Timestamp:   time.Now(),
	}

	outcome := &SubmitOutcome{
		Score: score,
		Total: len(session.Questions),
	}

	if err := s.Results.Create(result); err != nil {
		logger.Log.Error("Failed to persist quiz result",
			zap.Uint("userId", userID), zap.Error(err))
		outcome.Notice = "Your score was computed but could not be saved. It will not appear in your history."
	} else {
		outcome.ResultID = result.ID
	}

	if err := s.Sessions.Clear(ctx, userID); err != nil {
		logger.Log.Warn("Failed to clear quiz session", zap.Uint("userId", userID), zap.Error(err))
	}

	return outcome, nil
}

// ReviewBundle reconstructs a past quiz for the review-your-mistakes page
// from the snapshots stored at submission time.
type ReviewBundle struct {
	Subject     string               `json:"subject"`
	Level       string               `json:"level"`
	Score       int                  `json:"score"`
	Total       int                  `json:"total"`
	Timestamp   time.Time            `json:"timestamp"`
	Questions   []model.QuizQuestion `json:"questions"`
	UserAnswers map[string]string    `json:"userAnswers"`
}

func (s *QuizService) Review(resultID, userID uint) (*ReviewBundle, error) {
	result, err := s.Results.FindByID(resultID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz result: %w", err)
	}
	if result.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	var questions []model.QuizQuestion
	if err := json.Unmarshal([]byte(result.QuizData), &questions); err != nil {
		return nil, fmt.Errorf("unmarshal quiz snapshot: %w", err)
	}
	var userAnswers map[string]string
	if err := json.Unmarshal([]byte(result.UserAnswers), &userAnswers); err != nil {
		return nil, fmt.Errorf("unmarshal answer snapshot: %w", err)
	}

	return &ReviewBundle{
		Subject:     result.Subject,
		Level:       result.Level,
		Score:       result.Score,
		Total:       result.Total,
		Timestamp:   result.Timestamp,
		Questions:   questions,
		UserAnswers: userAnswers,
	}, nil
}

func (s *QuizService) History(userID uint) ([]model.QuizResult, error) {
	return s.Results.FindByUser(userID)
}

func (s *QuizService) ExplainAnswer(ctx context.Context, question, userAnswer, correctAnswer string) (string, error) {
	return s.Gemini.ExplainAnswer(ctx, question, userAnswer, correctAnswer)
}

func (s *QuizService) StudyGuide(ctx context.Context, subject, level string) (string, error) {
	return s.Gemini.GenerateStudyGuide(ctx, subject, level)
}
