// Package seed provides helpers to create demo data for the forum database.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"stackit/internal/models"
	"stackit/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every generated user can log in with.
const DemoPassword = "Password123!"

// SeedOptions tunes the factory.
type SeedOptions struct {
	// SkipBcrypt stores a cheap hash instead of a DefaultCost one.
	SkipBcrypt bool
	// MaxDays spreads created_at over the last N days.
	MaxDays int
	// Seed makes generated content reproducible when non-zero.
	Seed int64
}

// Factory builds forum entities and persists them to the database.
type Factory struct {
	db       *gorm.DB
	opts     SeedOptions
	rng      *rand.Rand
	faker    *gofakeit.Faker
	password string
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts SeedOptions) (*Factory, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cost := bcrypt.DefaultCost
	if opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &Factory{
		db:       db,
		opts:     opts,
		rng:      rand.New(rand.NewSource(seed)),
		faker:    gofakeit.New(seed),
		password: string(hash),
	}, nil
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// CreateUser persists a generated user. Overrides run before the insert.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: strings.ToLower(f.faker.Username()) + fmt.Sprintf("%d", f.faker.Number(100, 999)),
		Email:    f.faker.Email(),
		Password: f.password,
		Rank:     models.RankNewbie,
		Role:     models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateQuestion persists a generated question by author and links it to tags.
func (f *Factory) CreateQuestion(author *models.User, tags []models.Tag, overrides ...func(*models.Question)) (*models.Question, error) {
	q := &models.Question{
		Title:       strings.TrimSuffix(f.faker.Question(), "?") + "?",
		Description: "<p>" + f.faker.Paragraph(1, 3, 12, "</p><p>") + "</p>",
		AuthorID:    author.ID,
		CreatedAt:   f.pastTime(),
	}
	if len(q.Title) > models.MaxQuestionTitleLen {
		q.Title = q.Title[:models.MaxQuestionTitleLen]
	}
	for _, override := range overrides {
		override(q)
	}

	ctx := context.Background()
	if err := repository.NewQuestionRepository(f.db).Create(ctx, q); err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	if err := repository.NewTagRepository(f.db).LinkQuestion(ctx, q.ID, ids); err != nil {
		return nil, err
	}
	return q, nil
}

// CreateAnswer persists a generated answer to q.
func (f *Factory) CreateAnswer(q *models.Question, author *models.User, overrides ...func(*models.Answer)) (*models.Answer, error) {
	a := &models.Answer{
		Content:    "<p>" + f.faker.Paragraph(1, 2, 10, " ") + "</p>",
		AuthorID:   author.ID,
		QuestionID: q.ID,
		Votes:      f.rng.Intn(6),
		CreatedAt:  q.CreatedAt.Add(time.Duration(1+f.rng.Intn(48)) * time.Hour),
	}
	if now := time.Now(); a.CreatedAt.After(now) {
		a.CreatedAt = now
	}
	for _, override := range overrides {
		override(a)
	}
	if err := repository.NewAnswerRepository(f.db).Create(context.Background(), a); err != nil {
		return nil, err
	}
	return a, nil
}

// pickTags returns one to three distinct tags.
func (f *Factory) pickTags(all []models.Tag) []models.Tag {
	n := 1 + f.rng.Intn(3)
	if n > len(all) {
		n = len(all)
	}
	perm := f.rng.Perm(len(all))
	out := make([]models.Tag, 0, n)
	for _, i := range perm[:n] {
		out = append(out, all[i])
	}
	return out
}

// Options configures Demo.
type Options struct {
	NumUsers           int
	NumQuestions       int
	AnswersPerQuestion int
	ShouldClean        bool
	Factory            SeedOptions
}

// Demo seeds the tag directory, then generates users, questions, answers and
// an accepted answer for roughly a third of the questions.
func Demo(ctx context.Context, db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}
	if _, err := Tags(ctx, db); err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	if opts.NumUsers <= 0 {
		return nil
	}

	var tags []models.Tag
	if err := db.WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
		return err
	}

	f, err := NewFactory(db, opts.Factory)
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}

	answers := repository.NewAnswerRepository(db)
	for i := 0; i < opts.NumQuestions; i++ {
		author := users[f.rng.Intn(len(users))]
		q, err := f.CreateQuestion(author, f.pickTags(tags), func(q *models.Question) {
			q.Likes = f.rng.Intn(10)
		})
		if err != nil {
			return fmt.Errorf("create question: %w", err)
		}

		var last *models.Answer
		for j := 0; j < opts.AnswersPerQuestion; j++ {
			last, err = f.CreateAnswer(q, users[f.rng.Intn(len(users))])
			if err != nil {
				return fmt.Errorf("create answer: %w", err)
			}
		}
		if last != nil && i%3 == 0 {
			if err := answers.Accept(ctx, q.ID, last.ID); err != nil {
				return fmt.Errorf("accept answer: %w", err)
			}
		}
	}

	log.Printf("seeded %d users, %d questions, %d answers each", opts.NumUsers, opts.NumQuestions, opts.AnswersPerQuestion)
	return nil
}

// ClearAll removes forum content and users, leaving the tag directory.
func ClearAll(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		stmts := []string{
			"DELETE FROM notices",
			"DELETE FROM notice_boxes",
			"UPDATE questions SET accepted_answer_id = NULL",
			"DELETE FROM answers",
			"DELETE FROM question_tags",
			"DELETE FROM questions",
			"DELETE FROM users",
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
