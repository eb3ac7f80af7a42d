package repository

import (
	"context"
	"errors"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRank(ctx context.Context, id uint, rank string) (*models.User, error)
	UpdateRole(ctx context.Context, id uint, role string) (*models.User, error)
	OwnedContent(ctx context.Context, id uint) (questionIDs, answerIDs []uint, err error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(ctx, r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := readDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByUsername returns nil, nil when the username is free.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := readDB(ctx, r.db).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateRank(ctx context.Context, id uint, rank string) (*models.User, error) {
	return r.updateColumn(ctx, id, "rank", rank)
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column, value string) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// OwnedContent lists the ids of the questions and answers the user authored, oldest first.
func (r *userRepository) OwnedContent(ctx context.Context, id uint) ([]uint, []uint, error) {
	db := readDB(ctx, r.db).WithContext(ctx)

	questionIDs := []uint{}
	if err := db.Model(&models.Question{}).Where("author_id = ?", id).Order("id ASC").Pluck("id", &questionIDs).Error; err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	answerIDs := []uint{}
	if err := db.Model(&models.Answer{}).Where("author_id = ?", id).Order("id ASC").Pluck("id", &answerIDs).Error; err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	return questionIDs, answerIDs, nil
}
