package seed

import (
	"context"
	"log"

	"stackit/internal/repository"

	"gorm.io/gorm"
)

// PredefinedTags is the tag directory shipped with the forum. Questions may
// only reference tags from the directory.
var PredefinedTags = []string{
	"React", "JavaScript", "Node.js", "JWT", "MongoDB",
	"CSS", "HTML", "Python", "Express", "Docker",
}

// Tags inserts the predefined tags that are missing. Running it twice is a no-op.
func Tags(ctx context.Context, db *gorm.DB) (int, error) {
	created, err := repository.NewTagRepository(db).EnsureTags(ctx, PredefinedTags)
	if err != nil {
		return 0, err
	}
	log.Printf("tag directory: %d created, %d already present", created, len(PredefinedTags)-created)
	return created, nil
}
