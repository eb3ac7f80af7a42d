package models

// MaxTagNameLen is the longest tag name the directory accepts.
const MaxTagNameLen = 30

// Tag is a named category linking to the questions that use it.
type Tag struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"uniqueIndex;size:30;not null" json:"name"`
	Questions []Question `gorm:"many2many:question_tags" json:"-"`
}

// QuestionTag is one membership row of the tag directory.
type QuestionTag struct {
	QuestionID uint `gorm:"primaryKey"`
	TagID      uint `gorm:"primaryKey"`
}

// TableName pins the join table shared with the many2many associations.
func (QuestionTag) TableName() string {
	return "question_tags"
}
