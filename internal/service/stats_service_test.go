package service

import (
	"context"
	"errors"
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/repository"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeResultReader struct {
	results []model.QuizResult
	rows    []repository.LeaderboardRow
	err     error
}

func (f *fakeResultReader) FindByUser(uint) ([]model.QuizResult, error) {
	return f.results, f.err
}

func (f *fakeResultReader) SubjectAggregates(uint) ([]model.SubjectAggregate, error) {
	return nil, f.err
}

func (f *fakeResultReader) LeaderboardRows(int) ([]repository.LeaderboardRow, error) {
	return f.rows, f.err
}

type fakeUserReader struct {
	user *model.User
	err  error
}

func (f *fakeUserReader) FindByID(uint) (*model.User, error) {
	return f.user, f.err
}

func result(subject string, score, total int) model.QuizResult {
	return model.QuizResult{Subject: subject, Score: score, Total: total}
}

func TestSubjectAveragesMeanOfPercentages(t *testing.T) {
	results := []model.QuizResult{
		result("Math", 8, 10),
		result("Math", 9, 10),
		result("Physics", 4, 10),
		result("Physics", 6, 10),
	}

	order, averages := SubjectAverages(results)

	assert.Equal(t, []string{"Math", "Physics"}, order)
	assert.InDelta(t, 85.0, averages["Math"], 0.001)
	assert.InDelta(t, 50.0, averages["Physics"], 0.001)
}

func TestSubjectAveragesWeighsTestsEqually(t *testing.T) {
	// 5/5 and 0/20: pooled would give 20%, mean of percentages gives 50%.
	results := []model.QuizResult{
		result("Go", 5, 5),
		result("Go", 0, 20),
	}

	_, averages := SubjectAverages(results)
	assert.InDelta(t, 50.0, averages["Go"], 0.001)
}

func TestSubjectAveragesSkipsZeroTotal(t *testing.T) {
	results := []model.QuizResult{
		result("Go", 0, 0),
		result("Go", 3, 4),
	}

	order, averages := SubjectAverages(results)
	require.Equal(t, []string{"Go"}, order)
	assert.InDelta(t, 75.0, averages["Go"], 0.001)
}

func TestWeakestSubject(t *testing.T) {
	results := []model.QuizResult{
		result("Math", 8, 10),
		result("Math", 9, 10),
		result("Physics", 4, 10),
		result("Physics", 6, 10),
	}

	subject, avg, ok := WeakestSubject(results)
	require.True(t, ok)
	assert.Equal(t, "Physics", subject)
	assert.InDelta(t, 50.0, avg, 0.001)
}

func TestWeakestSubjectTieBreaksOnFirstEncountered(t *testing.T) {
	results := []model.QuizResult{
		result("History", 5, 10),
		result("Biology", 5, 10),
	}

	subject, _, ok := WeakestSubject(results)
	require.True(t, ok)
	assert.Equal(t, "History", subject)
}

func TestWeakestSubjectNoGradableResults(t *testing.T) {
	_, _, ok := WeakestSubject([]model.QuizResult{result("Go", 0, 0)})
	assert.False(t, ok)

	_, _, ok = WeakestSubject(nil)
	assert.False(t, ok)
}

func TestOverallStats(t *testing.T) {
	results := []model.QuizResult{
		result("Math", 8, 10),
		result("Math", 5, 10),
		result("Physics", 10, 10),
	}

	totalTests, avgPercent, bestPercent, subjects := OverallStats(results)

	assert.Equal(t, int64(3), totalTests)
	assert.InDelta(t, 76.666, avgPercent, 0.01)
	assert.InDelta(t, 100.0, bestPercent, 0.001)
	assert.Equal(t, int64(2), subjects)
}

func newStatsService(results QuizResultReader, users UserReader, backend GenerativeBackend) *StatsService {
	return NewStatsService(results, users, newTestGemini(backend))
}

func TestWeakestSubjectTipNoHistory(t *testing.T) {
	s := newStatsService(&fakeResultReader{}, &fakeUserReader{}, nil)
	assert.Equal(t, DefaultTip, s.WeakestSubjectTip(context.Background(), 1))
}

func TestWeakestSubjectTipReadFailure(t *testing.T) {
	s := newStatsService(&fakeResultReader{err: errors.New("db down")}, &fakeUserReader{}, nil)
	assert.Equal(t, FallbackTip, s.WeakestSubjectTip(context.Background(), 1))
}

func TestWeakestSubjectTipAboveThresholdSkipsGeneration(t *testing.T) {
	backend := &fakeBackend{
		generateFunc: func(_ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("should not be called"), nil
		},
	}
	reader := &fakeResultReader{results: []model.QuizResult{
		result("History", 15, 20),
		result("History", 16, 20),
	}}

	s := newStatsService(reader, &fakeUserReader{}, backend)
	assert.Equal(t, DefaultTip, s.WeakestSubjectTip(context.Background(), 1))
	assert.Zero(t, backend.generateCalls)
}

func TestWeakestSubjectTipPersonalized(t *testing.T) {
	var prompt string
	backend := &fakeBackend{
		generateFunc: func(_ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			prompt = contents[0].Parts[0].Text
			return textResponse("Hang in there, Ada. Take a Beginner quiz."), nil
		},
	}
	reader := &fakeResultReader{results: []model.QuizResult{
		result("Math", 9, 10),
		result("Chemistry", 3, 10),
	}}
	users := &fakeUserReader{user: &model.User{DisplayName: "Ada"}}

	s := newStatsService(reader, users, backend)
	tip := s.WeakestSubjectTip(context.Background(), 1)

	assert.Equal(t, "Hang in there, Ada. Take a Beginner quiz.", tip)
	assert.Contains(t, prompt, "'Chemistry'")
	assert.Contains(t, prompt, "Ada")
}

func TestWeakestSubjectTipBackendUnconfigured(t *testing.T) {
	reader := &fakeResultReader{results: []model.QuizResult{result("Chemistry", 3, 10)}}
	s := newStatsService(reader, &fakeUserReader{}, nil)
	assert.Equal(t, KeepPracticingTip, s.WeakestSubjectTip(context.Background(), 1))
}

func TestWeakestSubjectTipGenerationFailure(t *testing.T) {
	backend := &fakeBackend{
		generateFunc: func(_ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("backend down")
		},
	}
	reader := &fakeResultReader{results: []model.QuizResult{result("Chemistry", 3, 10)}}

	s := newStatsService(reader, &fakeUserReader{}, backend)
	assert.Equal(t, FallbackTip, s.WeakestSubjectTip(context.Background(), 1))
}

func TestLeaderboardNameFallbackAndRounding(t *testing.T) {
	reader := &fakeResultReader{rows: []repository.LeaderboardRow{
		{DisplayName: "Ada", Email: "ada@example.com", TestCount: 2, AvgScorePercent: 100},
		{DisplayName: "", Email: "bob.smith@example.com", TestCount: 1, AvgScorePercent: 33.333},
	}}

	s := newStatsService(reader, &fakeUserReader{}, nil)
	entries, err := s.Leaderboard(20)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Ada", entries[0].DisplayName)
	assert.InDelta(t, 100.0, entries[0].AvgScorePercent, 0.001)
	assert.Equal(t, "bob.smith", entries[1].DisplayName)
	assert.InDelta(t, 33.3, entries[1].AvgScorePercent, 0.001)
}
