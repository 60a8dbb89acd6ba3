package repository

import (
	"prepmate_backend/internal/model"

	"gorm.io/gorm"
)

type InterviewResultRepository struct {
	DB *gorm.DB
}

func NewInterviewResultRepository(db *gorm.DB) *InterviewResultRepository {
	return &InterviewResultRepository{DB: db}
}

func (r *InterviewResultRepository) Create(result *model.InterviewResult) error {
	return r.DB.Create(result).Error
}

func (r *InterviewResultRepository) FindByUser(userID uint) ([]model.InterviewResult, error) {
	var results []model.InterviewResult
	err := r.DB.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&results).Error
	return results, err
}
