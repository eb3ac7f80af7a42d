// Package repository implements the data access layer for the forum.
package repository

import (
	"context"
	"errors"
	"strings"

	"stackit/internal/database"
	"stackit/internal/models"

	"gorm.io/gorm"
)

type primaryKey struct{}

// UsePrimary pins every read made with the returned context to the primary.
// Write paths use it so a lagging replica never hides the row they just wrote.
func UsePrimary(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryKey{}, true)
}

// UsesPrimary reports whether ctx was pinned by UsePrimary.
func UsesPrimary(ctx context.Context) bool {
	pinned, _ := ctx.Value(primaryKey{}).(bool)
	return pinned
}

func readDB(ctx context.Context, primary *gorm.DB) *gorm.DB {
	if UsesPrimary(ctx) {
		return primary
	}
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError and wraps anything else as internal.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed".
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
