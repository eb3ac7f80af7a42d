package models

import (
	"time"
)

// MaxQuestionTitleLen is the longest title a question may carry.
const MaxQuestionTitleLen = 150

// Question represents a posted inquiry. Its answers are the rows whose
// QuestionID references it; its tags live in the question_tags join table.
type Question struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"size:150;not null" json:"title"`
	Description      string    `gorm:"type:text;not null" json:"description"`
	AuthorID         uint      `gorm:"not null;index" json:"authorId"`
	Author           User      `gorm:"foreignKey:AuthorID" json:"-"`
	Tags             []Tag     `gorm:"many2many:question_tags" json:"-"`
	Likes            int       `gorm:"not null;default:0" json:"likes"`
	Answers          []Answer  `gorm:"foreignKey:QuestionID" json:"-"`
	AcceptedAnswerID *uint     `gorm:"index" json:"acceptedAnswerId"`
	// AnswerCount is not persisted; computed at query time
	AnswerCount int       `gorm:"->;-:migration" json:"answerCount"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TagNames returns the names of the preloaded tags in their stored order.
func (q *Question) TagNames() []string {
	names := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		names = append(names, t.Name)
	}
	return names
}

// HasAcceptedAnswer reports whether an answer has been approved.
func (q *Question) HasAcceptedAnswer() bool {
	return q.AcceptedAnswerID != nil
}
