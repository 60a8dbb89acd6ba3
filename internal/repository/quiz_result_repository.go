package repository

import (
	"prepmate_backend/internal/model"

	"gorm.io/gorm"
)

type QuizResultRepository struct {
	DB *gorm.DB
}

func NewQuizResultRepository(db *gorm.DB) *QuizResultRepository {
	return &QuizResultRepository{DB: db}
}

func (r *QuizResultRepository) Create(result *model.QuizResult) error {
	return r.DB.Create(result).Error
}

func (r *QuizResultRepository) FindByID(id uint) (*model.QuizResult, error) {
	var result model.QuizResult
	err := r.DB.First(&result, id).Error
	return &result, err
}

func (r *QuizResultRepository) FindByUser(userID uint) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := r.DB.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&results).Error
	return results, err
}

// SubjectAggregates groups a user's results by subject. The percentage is
// the mean of per-test percentages, so a 5-question quiz weighs the same
// as a 20-question one. Keep this in sync with service.SubjectAverages.
func (r *QuizResultRepository) SubjectAggregates(userID uint) ([]model.SubjectAggregate, error) {
	var aggregates []model.SubjectAggregate
	err := r.DB.Model(&model.QuizResult{}).
		Select(`subject,
			COUNT(id) AS test_count,
			AVG(CASE WHEN total > 0 THEN score / total * 100 ELSE 0 END) AS avg_score_percent,
			MAX(CASE WHEN total > 0 THEN score / total * 100 ELSE 0 END) AS best_score_percent`).
		Where("user_id = ?", userID).
		Group("subject").
		Scan(&aggregates).Error
	return aggregates, err
}

// LeaderboardRow is the raw grouped row behind a leaderboard entry; the
// display-name fallback is applied by the stats service.
type LeaderboardRow struct {
	DisplayName     string
	Email           string
	TestCount       int64
	AvgScorePercent float64
}

func (r *QuizResultRepository) LeaderboardRows(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.Model(&model.QuizResult{}).
		Select(`users.display_name,
			users.email,
			COUNT(quiz_results.id) AS test_count,
			AVG(CASE WHEN quiz_results.total > 0 THEN quiz_results.score / quiz_results.total * 100 ELSE 0 END) AS avg_score_percent`).
		Joins("JOIN users ON users.id = quiz_results.user_id").
		Group("users.id").
		Order("avg_score_percent DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
