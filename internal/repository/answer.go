package repository

import (
	"context"
	"errors"

	"stackit/internal/models"

	"gorm.io/gorm"
)

// AnswerRepository defines persistence operations for answers.
type AnswerRepository interface {
	Create(ctx context.Context, a *models.Answer) error
	GetByID(ctx context.Context, id uint) (*models.Answer, error)
	ListByQuestion(ctx context.Context, questionID uint) ([]*models.Answer, error)
	ApplyVote(ctx context.Context, id uint, delta int) (*models.Answer, error)
	Accept(ctx context.Context, questionID, answerID uint) error
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository returns a new AnswerRepository implementation.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, a *models.Answer) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Question").Create(a).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *answerRepository) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	var a models.Answer
	if err := r.db.WithContext(ctx).Preload("Author").First(&a, id).Error; err != nil {
		return nil, notFoundOr(err, "Answer", id)
	}
	return &a, nil
}

// ListByQuestion orders the accepted answer first, then by votes, then newest.
func (r *answerRepository) ListByQuestion(ctx context.Context, questionID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := readDB(ctx, r.db).WithContext(ctx).
		Preload("Author").
		Where("question_id = ?", questionID).
		Order("is_accepted DESC").
		Order("votes DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&answers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return answers, nil
}

// ApplyVote moves votes by delta in one statement, never below zero.
func (r *answerRepository) ApplyVote(ctx context.Context, id uint, delta int) (*models.Answer, error) {
	res := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ?", id).
		Update("votes", gorm.Expr("CASE WHEN votes + ? < 0 THEN 0 ELSE votes + ? END", delta, delta))
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Answer", id)
	}
	return r.GetByID(ctx, id)
}

// Accept marks answerID as the question's only accepted answer.
func (r *answerRepository) Accept(ctx context.Context, questionID, answerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).
			Where("question_id = ? AND is_accepted = ? AND id <> ?", questionID, true, answerID).
			Update("is_accepted", false).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Answer{}).
			Where("id = ? AND question_id = ?", answerID, questionID).
			Update("is_accepted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Answer", answerID)
		}

		res = tx.Model(&models.Question{}).Where("id = ?", questionID).Update("accepted_answer_id", answerID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Question", questionID)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
