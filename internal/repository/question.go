package repository

import (
	"context"

	"stackit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	List(ctx context.Context) ([]*models.Question, error)
	IncrementLikes(ctx context.Context, id uint) (*models.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository returns a new QuestionRepository implementation.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

const answerCountSelect = "questions.*, (SELECT COUNT(*) FROM answers WHERE answers.question_id = questions.id) AS answer_count"

// Create inserts the question row only; tag links are written by TagRepository.LinkQuestion.
func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *questionRepository) withDetails(ctx context.Context) *gorm.DB {
	return readDB(ctx, r.db).WithContext(ctx).
		Select(answerCountSelect).
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") })
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := r.withDetails(ctx).Where("questions.id = ?", id).First(&q).Error; err != nil {
		return nil, notFoundOr(err, "Question", id)
	}
	return &q, nil
}

// List returns every question, newest first.
func (r *questionRepository) List(ctx context.Context) ([]*models.Question, error) {
	var qs []*models.Question
	err := r.withDetails(ctx).
		Order("questions.created_at DESC").
		Order("questions.id DESC").
		Find(&qs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return qs, nil
}

// IncrementLikes adds one like in a single UPDATE and returns the fresh row.
func (r *questionRepository) IncrementLikes(ctx context.Context, id uint) (*models.Question, error) {
	res := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		Update("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Question", id)
	}

	var q models.Question
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, notFoundOr(err, "Question", id)
	}
	return &q, nil
}
