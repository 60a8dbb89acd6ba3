package service

import (
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/repository"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	return s.UserRepo.FindByID(id)
}

func (s *UserService) UpdateDisplayName(userID uint, displayName string) error {
	return s.UserRepo.UpdateDisplayName(userID, displayName)
}
