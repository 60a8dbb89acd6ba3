package service

import (
	"context"
	"math"
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/repository"
	"prepmate_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

// WeakSubjectThreshold is the average percentage below which the
// dashboard asks for a personalized tip.
const WeakSubjectThreshold = 70.0

// Static dashboard tips. The tip is decorative: every failure in the
// personalized path falls back to one of these instead of an error.
const (
	DefaultTip        = "Welcome! Choose a subject to get started."
	KeepPracticingTip = "Keep practicing to improve your scores!"
	FallbackTip       = "Ready to learn? Pick a subject and start a quiz!"
)

// QuizResultReader is the slice of the quiz-result repository the
// aggregator reads from. It never writes.
type QuizResultReader interface {
	FindByUser(userID uint) ([]model.QuizResult, error)
	SubjectAggregates(userID uint) ([]model.SubjectAggregate, error)
	LeaderboardRows(limit int) ([]repository.LeaderboardRow, error)
}

type UserReader interface {
	FindByID(id uint) (*model.User, error)
}

type StatsService struct {
	Results QuizResultReader
	Users   UserReader
	Gemini  *GeminiService
}

func NewStatsService(results QuizResultReader, users UserReader, gemini *GeminiService) *StatsService {
	return &StatsService{
		Results: results,
		Users:   users,
		Gemini:  gemini,
	}
}

// SubjectAverages groups results by subject and computes the mean of
// per-test percentage scores. Each test contributes equally regardless of
// its question count; results with total <= 0 are skipped. The returned
// slice preserves first-encountered subject order so ties downstream
// break deterministically.
func SubjectAverages(results []model.QuizResult) ([]string, map[string]float64) {
	order := make([]string, 0)
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, r := range results {
		if r.Total <= 0 {
			continue
		}
		if _, seen := counts[r.Subject]; !seen {
			order = append(order, r.Subject)
		}
		sums[r.Subject] += float64(r.Score) / float64(r.Total)
		counts[r.Subject]++
	}

	averages := make(map[string]float64, len(counts))
	for _, subject := range order {
		averages[subject] = sums[subject] / float64(counts[subject]) * 100
	}
	return order, averages
}

// WeakestSubject returns the subject with the lowest average percentage,
// ties broken by first-encountered order. ok is false when no subject has
// a gradable result.
func WeakestSubject(results []model.QuizResult) (subject string, avg float64, ok bool) {
	order, averages := SubjectAverages(results)
	if len(order) == 0 {
		return "", 0, false
	}

	subject = order[0]
	avg = averages[subject]
	for _, s := range order[1:] {
		if averages[s] < avg {
			subject = s
			avg = averages[s]
		}
	}
	return subject, avg, true
}

// OverallStats computes the profile overview from a user's results:
// pooled average percent (total scores over total questions), best
// single-test percent, and the number of distinct subjects attempted.
func OverallStats(results []model.QuizResult) (totalTests int64, avgPercent, bestPercent float64, subjects int64) {
	totalTests = int64(len(results))

	var totalScore, totalQuestions int
	seen := make(map[string]bool)
	for _, r := range results {
		totalScore += r.Score
		totalQuestions += r.Total
		seen[r.Subject] = true
		if r.Total > 0 {
			if p := float64(r.Score) / float64(r.Total) * 100; p > bestPercent {
				bestPercent = p
			}
		}
	}

	if totalQuestions > 0 {
		avgPercent = float64(totalScore) / float64(totalQuestions) * 100
	}
	return totalTests, avgPercent, bestPercent, int64(len(seen))
}

// WeakestSubjectTip returns the dashboard tip. It only asks the model for
// a personalized tip when the user's weakest subject averages below the
// threshold; everything else, including any failure, yields a static
// message so the dashboard always renders.
func (s *StatsService) WeakestSubjectTip(ctx context.Context, userID uint) string {
	results, err := s.Results.FindByUser(userID)
	if err != nil {
		logger.Log.Error("Failed to load quiz results for tip", zap.Uint("userId", userID), zap.Error(err))
		return FallbackTip
	}
	if len(results) == 0 {
		return DefaultTip
	}

	subject, avg, ok := WeakestSubject(results)
	if !ok || avg >= WeakSubjectThreshold {
		return DefaultTip
	}

	if !s.Gemini.Available() {
		return KeepPracticingTip
	}

	displayName := ""
	if user, err := s.Users.FindByID(userID); err == nil {
		displayName = user.DisplayName
	}

	tip, err := s.Gemini.TutorTip(ctx, displayName, subject, avg)
	if err != nil {
		logger.Log.Warn("Tutor tip generation failed", zap.Uint("userId", userID), zap.Error(err))
		return FallbackTip
	}
	return tip
}

// ProfileStatistics bundles the overview numbers with the per-subject
// breakdown from the grouped aggregate query.
func (s *StatsService) ProfileStatistics(userID uint) (*model.ProfileStats, error) {
	results, err := s.Results.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	totalTests, avgPercent, bestPercent, subjects := OverallStats(results)

	breakdown, err := s.Results.SubjectAggregates(userID)
	if err != nil {
		return nil, err
	}
	for i := range breakdown {
		breakdown[i].AvgScorePercent = round1(breakdown[i].AvgScorePercent)
		breakdown[i].BestScorePercent = round1(breakdown[i].BestScorePercent)
	}

	return &model.ProfileStats{
		TotalTests:        totalTests,
		AvgScorePercent:   round1(avgPercent),
		BestScorePercent:  round1(bestPercent),
		SubjectsAttempted: subjects,
		Subjects:          breakdown,
	}, nil
}

// Leaderboard ranks all users by mean per-test percentage, descending.
// The display-name fallback to the email local part happens here, not in
// SQL, so it stays unit-testable.
func (s *StatsService) Leaderboard(limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.Results.LeaderboardRows(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		name := row.DisplayName
		if name == "" {
			name = emailLocalPart(row.Email)
		}
		entries = append(entries, model.LeaderboardEntry{
			DisplayName:     name,
			TestCount:       row.TestCount,
			AvgScorePercent: round1(row.AvgScorePercent),
		})
	}
	return entries, nil
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
