package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"prepmate_backend/internal/config"
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/schema"
	"prepmate_backend/internal/util"
	"prepmate_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// InterviewResultStore persists graded interview turns.
type InterviewResultStore interface {
	Create(result *model.InterviewResult) error
	FindByUser(userID uint) ([]model.InterviewResult, error)
}

type InterviewService struct {
	Gemini  *GeminiService
	Results InterviewResultStore
	Storage *StorageService
	Config  config.InterviewConfig

	// Probe is swapped in tests where no ffprobe binary exists.
	Probe func(path string) (*util.VideoInfo, error)
}

func NewInterviewService(gemini *GeminiService, results InterviewResultStore, storage *StorageService, cfg config.InterviewConfig) *InterviewService {
	return &InterviewService{
		Gemini:  gemini,
		Results: results,
		Storage: storage,
		Config:  cfg,
		Probe:   util.ProbeVideo,
	}
}

// GetQuestion fetches one open-ended interview question. Failures here
// surface to the caller so the endpoint can report a service error.
func (s *InterviewService) GetQuestion(ctx context.Context, subject, level string) (string, error) {
	return s.Gemini.GenerateInterviewQuestion(ctx, subject, level)
}

// GradeOutcome is what the grading endpoints report back.
type GradeOutcome struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Notice   string `json:"notice,omitempty"`
}

// GradeTextTurn grades a typed answer and records the turn. A grading
// failure surfaces as an error and persists nothing; a persistence
// failure is reported as a notice on an otherwise complete outcome.
func (s *InterviewService) GradeTextTurn(ctx context.Context, userID uint, subject, level, question, userAnswer string) (*GradeOutcome, error) {
	grade, err := s.Gemini.GradeTextAnswer(ctx, subject, level, question, userAnswer)
	if err != nil {
		return nil, err
	}

	outcome := &GradeOutcome{
		Score:    grade.Score,
		Feedback: grade.Feedback,
	}

	result := &model.InterviewResult{
		UserID:       userID,
		Subject:      subject,
		Level:        level,
		QuestionText: question,
		UserAnswer:   userAnswer,
		AIFeedback:   grade.Feedback,
		AIScore:      grade.Score,
		Timestamp:    time.Now(),
	}
	if err := s.Results.Create(result); err != nil {
		logger.Log.Error("Failed to persist interview result",
			zap.Uint("userId", userID), zap.Error(err))
		outcome.Notice = "Your feedback was generated but could not be saved to your history."
	}

	return outcome, nil
}

// CombineVideoFeedback folds the two feedback sections into the single
// stored text block, with labels so the history view can still show the
// structure.
func CombineVideoFeedback(grade *schema.VideoGrade) string {
	return fmt.Sprintf("**Technical Feedback:**\n%s\n\n**Body Language Feedback:**\n%s",
		grade.TechnicalFeedback, grade.BodyLanguageFeedback)
}

// GradeVideoTurn grades a recorded answer: guard the recording with an
// ffprobe pass, ship it to the backend for processing and grading, then
// record the turn with the combined feedback. A terminal processing
// failure persists nothing. The temp file is owned by the caller.
func (s *InterviewService) GradeVideoTurn(ctx context.Context, userID uint, subject, level, question, videoPath, mimeType string) (*GradeOutcome, error) {
	if s.Config.MaxVideoSeconds > 0 {
		info, err := s.Probe(videoPath)
		if err != nil {
			return nil, fmt.Errorf("inspect video: %w", err)
		}
		if info.Duration > s.Config.MaxVideoSeconds {
			return nil, fmt.Errorf("%w: %.0fs > %.0fs", util.ErrVideoTooLong, info.Duration, s.Config.MaxVideoSeconds)
		}
	}

	grade, err := s.Gemini.GradeVideoAnswer(ctx, videoPath, mimeType, question, subject, level)
	if err != nil {
		return nil, err
	}

	combined := CombineVideoFeedback(grade)

	videoURL := ""
	if s.Config.ArchiveVideos && s.Storage != nil {
		name := fmt.Sprintf("interviews/%d/%s", userID, filepath.Base(videoPath))
		url, err := s.Storage.UploadFile(ctx, name, videoPath, mimeType)
		if err != nil {
			logger.Log.Warn("Failed to archive interview video",
				zap.Uint("userId", userID), zap.Error(err))
		} else {
			videoURL = url
		}
	}

	outcome := &GradeOutcome{
		Score:    grade.Score,
		Feedback: combined,
	}

	result := &model.InterviewResult{
		UserID:       userID,
		Subject:      subject,
		Level:        level,
		QuestionText: question,
		UserAnswer:   model.VideoAnswerSentinel,
		AIFeedback:   combined,
		AIScore:      grade.Score,
		VideoURL:     videoURL,
		Timestamp:    time.Now(),
	}
	if err := s.Results.Create(result); err != nil {
		logger.Log.Error("Failed to persist interview result",
			zap.Uint("userId", userID), zap.Error(err))
		outcome.Notice = "Your feedback was generated but could not be saved to your history."
	}

	return outcome, nil
}

func (s *InterviewService) History(userID uint) ([]model.InterviewResult, error) {
	return s.Results.FindByUser(userID)
}

// CleanupTempVideo removes a temp recording; called on every exit path of
// the video-grading request.
func CleanupTempVideo(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn("Failed to remove temp video", zap.String("path", path), zap.Error(err))
	}
}
