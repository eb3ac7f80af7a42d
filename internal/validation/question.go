package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"stackit/internal/models"
)

// Messages returned to clients for malformed question and answer bodies.
const (
	MsgQuestionFieldsRequired = "Title, description, and at least one tag are required."
	MsgAnswerFieldsRequired   = "Content and questionId are required."
	MsgInvalidVoteType        = "Invalid vote type"
)

// QuestionFields is a question submission after trimming.
type QuestionFields struct {
	Title       string
	Description string
	Tags        []string
}

// NormalizeQuestion trims the submission, drops blank tags and collapses tag names
// that differ only by case, keeping the first spelling.
func NormalizeQuestion(title, description string, tags []string) (QuestionFields, error) {
	out := QuestionFields{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Tags:        NormalizeTags(tags),
	}

	if out.Title == "" || out.Description == "" || len(out.Tags) == 0 {
		return out, errors.New(MsgQuestionFieldsRequired)
	}
	if utf8.RuneCountInString(out.Title) > models.MaxQuestionTitleLen {
		return out, fmt.Errorf("Title must be at most %d characters", models.MaxQuestionTitleLen)
	}
	return out, nil
}

func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// ValidateTagName applies the directory's tag length rule.
func ValidateTagName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("tag name is required")
	}
	if utf8.RuneCountInString(name) > models.MaxTagNameLen {
		return fmt.Errorf("tag name must be at most %d characters", models.MaxTagNameLen)
	}
	return nil
}
