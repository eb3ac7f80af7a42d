// Package bootstrap wires the database and Redis for the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"stackit/internal/cache"
	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/models"
	"stackit/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedTags bool
}

// InitRuntime connects to DB and Redis and optionally seeds the tag directory.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevAdmin(context.Background(), cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedTags {
		if _, err := seed.Tags(context.Background(), db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed tag directory: %w", err)
		}
	}

	return db, r, nil
}

func ensureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil
	}

	username := strings.TrimSpace(cfg.DevAdminUsername)
	if username == "" {
		username = "stackit_admin"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@stackit.local"
	}
	if cfg.DevAdminPassword == "" {
		return errors.New("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DevAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var admin models.User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			admin = models.User{
				Username: username,
				Email:    email,
				Password: string(hashedPassword),
				Rank:     models.RankGuru,
				Role:     models.RoleAdmin,
			}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).Where("id = ?", admin.ID).Update("role", models.RoleAdmin).Error
		}
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, admin.ID)
	log.Printf("development admin bootstrap ensured (%s)", email)
	return nil
}
