package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"quill/internal/middleware"

	"gorm.io/gorm"
)

// appliedMigration is one row of the schema_migrations ledger.
type appliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (appliedMigration) TableName() string { return "schema_migrations" }

// migrationLedger tracks which embedded migrations a database has run.
type migrationLedger struct {
	db *gorm.DB
}

func newMigrationLedger(db *gorm.DB) *migrationLedger {
	return &migrationLedger{db: db}
}

func (l *migrationLedger) ensure(ctx context.Context) error {
	if err := l.db.WithContext(ctx).AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// versions lists applied versions in ascending order. A database without
// the ledger table has applied nothing.
func (l *migrationLedger) versions(ctx context.Context) ([]int, error) {
	db := l.db.WithContext(ctx)
	if !db.Migrator().HasTable(&appliedMigration{}) {
		return nil, nil
	}
	var out []int
	if err := db.Model(&appliedMigration{}).Order("version").Pluck("version", &out).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	return out, nil
}

// apply runs the up script and records it in the same transaction.
func (l *migrationLedger) apply(ctx context.Context, m Migration) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("apply %s: %w", m.String(), err)
		}
		if err := tx.Create(&appliedMigration{Version: m.Version, Name: m.Name}).Error; err != nil {
			return fmt.Errorf("record %s: %w", m.String(), err)
		}
		return nil
	})
}

// revert runs the down script and drops the ledger row in the same transaction.
func (l *migrationLedger) revert(ctx context.Context, m Migration) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", m.String(), err)
		}
		if err := tx.Where("version = ?", m.Version).Delete(&appliedMigration{}).Error; err != nil {
			return fmt.Errorf("unrecord %s: %w", m.String(), err)
		}
		return nil
	})
}

// pendingMigrations returns the registered migrations missing from applied,
// in registration order. An applied version this build does not know means
// the database is ahead of the binary, which is an error.
func pendingMigrations(applied []int, registered []Migration) ([]Migration, error) {
	known := make(map[int]bool, len(registered))
	for _, m := range registered {
		known[m.Version] = true
	}

	done := make(map[int]bool, len(applied))
	var unknown []string
	for _, v := range applied {
		done[v] = true
		if !known[v] {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("schema_migrations has versions this build does not know: %s",
			strings.Join(unknown, ", "))
	}

	var pending []Migration
	for _, m := range registered {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// RunMigrations applies every embedded migration the database has not run yet.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	ledger := newMigrationLedger(db)
	if err := ledger.ensure(ctx); err != nil {
		return err
	}
	applied, err := ledger.versions(ctx)
	if err != nil {
		return err
	}
	pending, err := pendingMigrations(applied, migrations)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		middleware.Logger.InfoContext(ctx, "Schema up to date", slog.Int("applied", len(applied)))
		return nil
	}

	for _, m := range pending {
		start := time.Now()
		if err := ledger.apply(ctx, m); err != nil {
			return err
		}
		middleware.Logger.InfoContext(ctx, "Migration applied",
			slog.String("migration", m.String()),
			slog.Duration("took", time.Since(start)))
	}
	return nil
}

// RollbackMigration runs the down script of an applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	ledger := newMigrationLedger(db)
	applied, err := ledger.versions(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %s has not been applied", m.String())
	}

	if err := ledger.revert(ctx, *m); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "Migration rolled back", slog.String("migration", m.String()))
	return nil
}
