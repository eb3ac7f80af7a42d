package database

import (
	"context"
	"fmt"
	"log/slog"

	"stackit/internal/config"
	"stackit/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes accepted by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do for a configuration.
type SchemaStatus struct {
	Mode               string
	Driver             string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

func schemaMode(cfg *config.Config) string {
	if cfg.DBSchemaMode == "" {
		return SchemaModeHybrid
	}
	return cfg.DBSchemaMode
}

// schemaPolicy resolves which schema strategy runs. The embedded SQL is
// Postgres dialect, so SQLite databases are always auto-migrated.
func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	mode := schemaMode(cfg)
	if cfg.DBDriver == config.DriverSQLite {
		switch mode {
		case SchemaModeAuto, SchemaModeHybrid:
			return false, true, nil
		default:
			return false, false, fmt.Errorf("DB_SCHEMA_MODE=%s requires the postgres driver", mode)
		}
	}

	switch mode {
	case SchemaModeSQL:
		return true, false, nil
	case SchemaModeAuto:
		if cfg.IsProduction() {
			return false, false, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		return false, true, nil
	case SchemaModeHybrid:
		// Production only ever sees reviewed SQL; everywhere else the models drive the schema.
		return cfg.IsProduction(), !cfg.IsProduction(), nil
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// AutoMigrate creates or updates every persistent model's table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the connected database up to date according to DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}

	if runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if runAuto {
		middleware.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", schemaMode(cfg)),
			slog.String("driver", cfg.DBDriver),
			slog.String("env", cfg.Env),
		)
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports the resolved schema policy and, for SQL mode, pending migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               schemaMode(cfg),
		Driver:             cfg.DBDriver,
		Environment:        cfg.Env,
		WillRunSQL:         runSQL,
		WillRunAutoMigrate: runAuto,
	}
	if !runSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied
	status.PendingMigrations = pendingMigrations(applied, GetMigrations())
	return status, nil
}

func pendingMigrations(applied []int, registered []Migration) []Migration {
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var pending []Migration
	for _, m := range registered {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending
}
