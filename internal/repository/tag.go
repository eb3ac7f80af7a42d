package repository

import (
	"context"
	"strings"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagEntry is one row of the tag directory with the ids of the questions carrying it.
type TagEntry struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Questions []uint `json:"questions"`
}

// TagRepository defines persistence operations for the tag directory.
type TagRepository interface {
	FindByNames(ctx context.Context, names []string) ([]models.Tag, error)
	EnsureTags(ctx context.Context, names []string) (int, error)
	LinkQuestion(ctx context.Context, questionID uint, tagIDs []uint) error
	Directory(ctx context.Context) ([]TagEntry, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func lowerAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.ToLower(strings.TrimSpace(n)))
	}
	return out
}

// FindByNames matches names case-insensitively and returns the stored (canonical) tags.
func (r *tagRepository) FindByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	if len(names) == 0 {
		return tags, nil
	}
	err := readDB(ctx, r.db).WithContext(ctx).
		Where("LOWER(name) IN ?", lowerAll(names)).
		Order("id ASC").
		Find(&tags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// EnsureTags inserts the names that are not already present under any casing and
// reports how many were created. Blank names are skipped; an over-long name fails
// the whole call before anything is written.
func (r *tagRepository) EnsureTags(ctx context.Context, names []string) (int, error) {
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		if err := validation.ValidateTagName(n); err != nil {
			return 0, models.NewValidationError(err.Error())
		}
	}

	existing, err := r.FindByNames(ctx, names)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[strings.ToLower(t.Name)] = true
	}

	var missing []models.Tag
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || have[key] {
			continue
		}
		have[key] = true
		missing = append(missing, models.Tag{Name: n})
	}
	if len(missing) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&missing)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	cache.InvalidateTags(ctx)
	return int(res.RowsAffected), nil
}

// LinkQuestion set-adds the question to each tag.
func (r *tagRepository) LinkQuestion(ctx context.Context, questionID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.QuestionTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, models.QuestionTag{QuestionID: questionID, TagID: id})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTags(ctx)
	return nil
}

// Directory lists every tag by name with its question ids.
func (r *tagRepository) Directory(ctx context.Context) ([]TagEntry, error) {
	var entries []TagEntry
	fetch := func() error {
		db := readDB(ctx, r.db).WithContext(ctx)

		var tags []models.Tag
		if err := db.Order("name ASC").Find(&tags).Error; err != nil {
			return models.NewInternalError(err)
		}
		var links []models.QuestionTag
		if err := db.Order("question_id ASC").Find(&links).Error; err != nil {
			return models.NewInternalError(err)
		}

		byTag := make(map[uint][]uint, len(tags))
		for _, l := range links {
			byTag[l.TagID] = append(byTag[l.TagID], l.QuestionID)
		}
		entries = make([]TagEntry, 0, len(tags))
		for _, t := range tags {
			ids := byTag[t.ID]
			if ids == nil {
				ids = []uint{}
			}
			entries = append(entries, TagEntry{ID: t.ID, Name: t.Name, Questions: ids})
		}
		return nil
	}

	var err error
	if key, ok := cache.TagsDirectoryKey(ctx); ok {
		err = cache.Aside(ctx, key, &entries, cache.TagsTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}
