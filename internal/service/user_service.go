package service

import (
	"context"

	"stackit/internal/models"
	"stackit/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the public profile with the ids of the user's questions and answers.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, answers, err := s.userRepo.OwnedContent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: user.Profile(), Questions: questions, Answers: answers}, nil
}

func (s *UserService) SetRank(ctx context.Context, targetID uint, rank string) (*models.User, error) {
	if !models.ValidRank(rank) {
		return nil, models.NewValidationError("Rank must be one of newbie, contributor, expert, guru")
	}
	return s.userRepo.UpdateRank(ctx, targetID, rank)
}

func (s *UserService) SetRole(ctx context.Context, targetID uint, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, models.NewValidationError("Role must be user or admin")
	}
	return s.userRepo.UpdateRole(ctx, targetID, role)
}
