// Package testutil provides shared fixtures for tests that need a real database.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"stackit/internal/database"
	"stackit/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewSQLiteDB opens an isolated in-memory SQLite database with the full schema applied.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with a bcrypt-hashed copy of password.
func CreateUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		Username: username,
		Email:    strings.ToLower(username) + "@example.com",
		Password: string(hash),
		Rank:     models.RankNewbie,
		Role:     models.RoleUser,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateTags inserts the named tags and returns them in order.
func CreateTags(t *testing.T, db *gorm.DB, names ...string) []models.Tag {
	t.Helper()

	tags := make([]models.Tag, 0, len(names))
	for _, n := range names {
		tag := models.Tag{Name: n}
		if err := db.Create(&tag).Error; err != nil {
			t.Fatalf("create tag %s: %v", n, err)
		}
		tags = append(tags, tag)
	}
	return tags
}
