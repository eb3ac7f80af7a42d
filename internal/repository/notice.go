package repository

import (
	"context"
	"errors"

	"stackit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NoticeRepository defines persistence operations for notice boxes.
type NoticeRepository interface {
	Push(ctx context.Context, userID uint, n *models.Notice) error
	ListForUser(ctx context.Context, userID uint) ([]models.Notice, error)
	MarkRead(ctx context.Context, userID, noticeID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type noticeRepository struct {
	db *gorm.DB
}

// NewNoticeRepository returns a new NoticeRepository implementation.
func NewNoticeRepository(db *gorm.DB) NoticeRepository {
	return &noticeRepository{db: db}
}

// Push creates the user's box on first use and appends n to it.
func (r *noticeRepository) Push(ctx context.Context, userID uint, n *models.Notice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		box := models.NoticeBox{UserID: userID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&box).Error; err != nil {
			return err
		}
		// On conflict the insert returns no id; read the winner back.
		if err := tx.Where("user_id = ?", userID).First(&box).Error; err != nil {
			return err
		}

		n.BoxID = box.ID
		return tx.Omit("Question", "Notifier").Create(n).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *noticeRepository) boxID(ctx context.Context, userID uint) (uint, error) {
	var box models.NoticeBox
	err := readDB(ctx, r.db).WithContext(ctx).Where("user_id = ?", userID).First(&box).Error
	if err != nil {
		return 0, err
	}
	return box.ID, nil
}

// ListForUser returns the user's notices in the order they were pushed; a user
// without a box has none.
func (r *noticeRepository) ListForUser(ctx context.Context, userID uint) ([]models.Notice, error) {
	notices := []models.Notice{}

	id, err := r.boxID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notices, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	err = readDB(ctx, r.db).WithContext(ctx).
		Preload("Notifier", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Question", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title") }).
		Where("box_id = ?", id).
		Order("id ASC").
		Find(&notices).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}

func (r *noticeRepository) MarkRead(ctx context.Context, userID, noticeID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Notice{}).
		Where("id = ? AND box_id IN (?)", noticeID,
			r.db.Model(&models.NoticeBox{}).Select("id").Where("user_id = ?", userID)).
		Update("read", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notice", noticeID)
	}
	return nil
}

func (r *noticeRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notice{}).
		Where("read = ? AND box_id IN (?)", false,
			r.db.Model(&models.NoticeBox{}).Select("id").Where("user_id = ?", userID)).
		Update("read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
