package database

import "stackit/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// The question_tags join table is created through Question.Tags.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Question{},
		&models.Answer{},
		&models.NoticeBox{},
		&models.Notice{},
	}
}
