package models

import (
	"time"
)

// Notice kinds.
const (
	NoticeKindAnswer = "answer"
	NoticeKindLike   = "like"
	NoticeKindVote   = "vote"
	NoticeKindAccept = "accept"
)

// NoticeBox is the per-user container of notices. It is created lazily the
// first time a notice is delivered to the user.
type NoticeBox struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Notices   []Notice  `gorm:"foreignKey:BoxID" json:"notices,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notice is one append-only entry of a NoticeBox. Only Read ever changes.
type Notice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BoxID      uint      `gorm:"not null;index" json:"-"`
	Kind       string    `gorm:"size:20;not null" json:"kind"`
	QuestionID uint      `gorm:"not null" json:"-"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"-"`
	AnswerID   *uint     `json:"-"`
	NotifierID uint      `gorm:"not null" json:"-"`
	Notifier   User      `gorm:"foreignKey:NotifierID" json:"-"`
	Read       bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

// ValidNoticeKind reports whether kind is a known notice kind.
func ValidNoticeKind(kind string) bool {
	switch kind {
	case NoticeKindAnswer, NoticeKindLike, NoticeKindVote, NoticeKindAccept:
		return true
	}
	return false
}
