package service

import (
	"time"

	"stackit/internal/models"
)

// AuthorBadge is the author block of a question listing row.
type AuthorBadge struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Rank   string `json:"rank"`
}

// QuestionSummary is one row of the question listing.
type QuestionSummary struct {
	ID                uint        `json:"id"`
	Title             string      `json:"title"`
	Excerpt           string      `json:"excerpt"`
	Tags              []string    `json:"tags"`
	Author            AuthorBadge `json:"author"`
	Answers           int         `json:"answers"`
	Votes             int         `json:"votes"`
	Views             int         `json:"views"`
	CreatedAt         string      `json:"createdAt"`
	HasAcceptedAnswer bool        `json:"hasAcceptedAnswer"`
}

// QuestionRecord is a stored question with its author's public profile.
type QuestionRecord struct {
	ID               uint                 `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Tags             []string             `json:"tags"`
	Author           models.PublicProfile `json:"author"`
	Likes            int                  `json:"likes"`
	AnswerCount      int                  `json:"answerCount"`
	AcceptedAnswerID *uint                `json:"acceptedAnswerId"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// QuestionDetail is the question page: the question and its ranked answers.
type QuestionDetail struct {
	Question QuestionDetailHead  `json:"question"`
	Answers  []AnswerDetailEntry `json:"answers"`
}

type QuestionDetailHead struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Author           string    `json:"author"`
	CreatedAt        time.Time `json:"createdAt"`
	Tags             []string  `json:"tags"`
	AnswerCount      int       `json:"answerCount"`
	Likes            int       `json:"likes"`
	AcceptedAnswerID *uint     `json:"acceptedAnswerId"`
}

type AnswerDetailEntry struct {
	ID         uint      `json:"id"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	Votes      int       `json:"votes"`
	IsAccepted bool      `json:"isAccepted"`
}

// AnswerAuthor is the author block embedded in answers.
type AnswerAuthor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// AnswerRecord is a stored answer with its author expanded.
type AnswerRecord struct {
	ID         uint         `json:"id"`
	Content    string       `json:"content"`
	Author     AnswerAuthor `json:"author"`
	Votes      int          `json:"votes"`
	IsAccepted bool         `json:"isAccepted"`
	QuestionID uint         `json:"questionId"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// VoteResult is the outcome of a vote.
type VoteResult struct {
	Votes  int          `json:"votes"`
	Answer AnswerRecord `json:"answer"`
}

// AnswerLookup pairs an answer with the question it belongs to.
type AnswerLookup struct {
	Answer   AnswerRecord  `json:"answer"`
	Question QuestionBrief `json:"question"`
}

type QuestionBrief struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	AuthorID         uint   `json:"authorId"`
	AcceptedAnswerID *uint  `json:"acceptedAnswerId"`
}

// NoticeView is one entry of a user's notice box.
type NoticeView struct {
	ID         uint          `json:"id"`
	Kind       string        `json:"kind"`
	QuestionID *NoticeTarget `json:"questionId"`
	AnswersID  *NoticeTarget `json:"answersId"`
	Notifier   AnswerAuthor  `json:"notifier"`
	Read       bool          `json:"read"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// NoticeTarget references the question or answer a notice is about.
type NoticeTarget struct {
	ID    uint   `json:"id"`
	Title string `json:"title,omitempty"`
}

// UserProfile is a public profile with the ids of the user's content.
type UserProfile struct {
	User      models.PublicProfile `json:"user"`
	Questions []uint               `json:"questions"`
	Answers   []uint               `json:"answers"`
}

func answerRecord(a *models.Answer) AnswerRecord {
	return AnswerRecord{
		ID:      a.ID,
		Content: a.Content,
		Author: AnswerAuthor{
			ID:       a.AuthorID,
			Username: displayName(a.Author.Username),
		},
		Votes:      a.Votes,
		IsAccepted: a.IsAccepted,
		QuestionID: a.QuestionID,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func questionRecord(q *models.Question) QuestionRecord {
	author := q.Author.Profile()
	author.ID = q.AuthorID
	return QuestionRecord{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		Tags:             q.TagNames(),
		Author:           author,
		Likes:            q.Likes,
		AnswerCount:      q.AnswerCount,
		AcceptedAnswerID: q.AcceptedAnswerID,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}

func noticeView(n models.Notice) NoticeView {
	v := NoticeView{
		ID:   n.ID,
		Kind: n.Kind,
		Notifier: AnswerAuthor{
			ID:       n.NotifierID,
			Username: displayName(n.Notifier.Username),
		},
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.Question != nil {
		v.QuestionID = &NoticeTarget{ID: n.Question.ID, Title: n.Question.Title}
	} else if n.QuestionID != 0 {
		v.QuestionID = &NoticeTarget{ID: n.QuestionID}
	}
	if n.AnswerID != nil {
		v.AnswersID = &NoticeTarget{ID: *n.AnswerID}
	}
	return v
}
