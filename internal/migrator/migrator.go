package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/eleven-am/spycat/internal/logger"
)

// DestructiveChangesError is returned when a plan would drop data and the
// caller did not allow it.
type DestructiveChangesError struct {
	Descriptions []string
}

func (e *DestructiveChangesError) Error() string {
	return fmt.Sprintf("migration contains %d destructive change(s): %s",
		len(e.Descriptions), strings.Join(e.Descriptions, "; "))
}

type ApplyOptions struct {
	AllowDestructive bool
}

// Apply executes plan inside one transaction.
func Apply(ctx context.Context, db *sql.DB, plan *Plan, opts ApplyOptions) error {
	if plan.Empty() {
		return nil
	}

	if count, descriptions := plan.Destructive(); count > 0 && !opts.AllowDestructive {
		return &DestructiveChangesError{Descriptions: descriptions}
	}

	log := logger.Migration()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}

	for i, stmt := range plan.Statements {
		log.Debug("Executing statement", "index", i+1, "total", len(plan.Statements))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	log.Info("Migration applied", "statements", len(plan.Statements))
	return nil
}

// Migrate plans and applies in one step.
func (m *Migrator) Migrate(ctx context.Context, db *sql.DB, opts ApplyOptions) (*Plan, error) {
	plan, err := m.Plan(ctx, db, false)
	if err != nil {
		return nil, err
	}
	if plan.Empty() {
		logger.Migration().Info("Schema is up to date")
		return plan, nil
	}
	return plan, Apply(ctx, db, plan, opts)
}
