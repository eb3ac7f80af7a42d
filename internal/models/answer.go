package models

import (
	"time"
)

// Vote directions accepted by the vote endpoint.
const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// Answer is a response to a Question. Votes never drop below zero and at most
// one answer per question carries IsAccepted.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   uint      `gorm:"not null;index" json:"authorId"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"-"`
	Votes      int       `gorm:"not null;default:0;check:votes >= 0" json:"votes"`
	IsAccepted bool      `gorm:"not null;default:false" json:"isAccepted"`
	QuestionID uint      `gorm:"not null;index" json:"questionId"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// VoteDelta returns the counter change for a vote direction and whether the
// direction is recognised.
func VoteDelta(voteType string) (int, bool) {
	switch voteType {
	case VoteUp:
		return 1, true
	case VoteDown:
		return -1, true
	}
	return 0, false
}
