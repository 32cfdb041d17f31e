package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
)

// GenerateAtlasSQL renders changes as SQL statements for driver's dialect.
func GenerateAtlasSQL(ctx context.Context, driver migrate.Driver, changes []schema.Change) ([]string, error) {
	plan, err := driver.PlanChanges(ctx, "", changes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	statements := make([]string, len(plan.Changes))
	for i, change := range plan.Changes {
		statements[i] = change.Cmd
		if change.Comment != "" {
			statements[i] = fmt.Sprintf("-- %s\n%s", change.Comment, change.Cmd)
		}
	}

	return statements, nil
}

// Plan is the set of changes that bring a live database to the desired schema.
type Plan struct {
	Changes    []schema.Change
	Statements []string
}

func (p *Plan) Empty() bool {
	return p == nil || len(p.Statements) == 0
}

// Destructive returns the number of destructive changes and their descriptions.
func (p *Plan) Destructive() (int, []string) {
	if p == nil {
		return 0, nil
	}
	return CountDestructiveChanges(p.Changes)
}

// Migrator diffs a live database against the embedded schema using atlas.
type Migrator struct {
	config        *DBConfig
	tempDBManager *TempDBManager
	targetDDL     string
}

func NewMigrator(config *DBConfig) *Migrator {
	return &Migrator{
		config:        config,
		tempDBManager: NewTempDBManager(config),
		targetDDL:     Schema,
	}
}

// Plan inspects db and computes the statements needed to reach the desired
// schema. With assumeEmpty the live database is not inspected.
func (m *Migrator) Plan(ctx context.Context, db *sql.DB, assumeEmpty bool) (*Plan, error) {
	var currentRealm *schema.Realm

	if assumeEmpty {
		currentRealm = &schema.Realm{
			Schemas: []*schema.Schema{
				{
					Name:   "public",
					Tables: []*schema.Table{},
				},
			},
		}
	} else {
		sourceDriver, err := postgres.Open(db)
		if err != nil {
			return nil, fmt.Errorf("failed to create source driver: %w", err)
		}

		currentRealm, err = sourceDriver.InspectRealm(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect current schema: %w", err)
		}
	}

	tempDBName := fmt.Sprintf("temp_atlas_%d", time.Now().UnixNano())
	tempDB, cleanup, err := m.tempDBManager.CreateTempDB(ctx, tempDBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp database: %w", err)
	}
	defer cleanup()

	if _, err = tempDB.ExecContext(ctx, m.targetDDL); err != nil {
		return nil, fmt.Errorf("failed to execute DDL in temp database: %w", err)
	}

	targetDriver, err := postgres.Open(tempDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create target driver: %w", err)
	}

	targetRealm, err := targetDriver.InspectRealm(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect target schema: %w", err)
	}

	var diffDriver migrate.Driver = targetDriver
	if !assumeEmpty {
		sourceDriver, err := postgres.Open(db)
		if err != nil {
			return nil, fmt.Errorf("failed to create source driver for diff: %w", err)
		}
		diffDriver = sourceDriver
	}

	changes, err := diffDriver.RealmDiff(currentRealm, targetRealm)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate diff: %w", err)
	}

	if len(changes) == 0 {
		return &Plan{}, nil
	}

	statements, err := GenerateAtlasSQL(ctx, diffDriver, changes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate SQL: %w", err)
	}

	return &Plan{Changes: changes, Statements: statements}, nil
}

func IsDestructiveChange(change schema.Change) bool {
	switch c := change.(type) {
	case *schema.DropTable, *schema.DropColumn, *schema.DropIndex, *schema.DropForeignKey, *schema.DropCheck:
		return true
	case *schema.ModifyTable:
		for _, subChange := range c.Changes {
			if IsDestructiveChange(subChange) {
				return true
			}
		}
	}
	return false
}

func DescribeChange(change schema.Change) string {
	switch c := change.(type) {
	case *schema.AddTable:
		return fmt.Sprintf("Create table %s", c.T.Name)
	case *schema.DropTable:
		return fmt.Sprintf("Drop table %s", c.T.Name)
	case *schema.ModifyTable:
		return fmt.Sprintf("Modify table %s (%d changes)", c.T.Name, len(c.Changes))
	case *schema.AddColumn:
		return fmt.Sprintf("Add column %s", c.C.Name)
	case *schema.DropColumn:
		return fmt.Sprintf("Drop column %s", c.C.Name)
	case *schema.ModifyColumn:
		return fmt.Sprintf("Modify column %s", c.To.Name)
	case *schema.AddIndex:
		return fmt.Sprintf("Add index %s", c.I.Name)
	case *schema.DropIndex:
		return fmt.Sprintf("Drop index %s", c.I.Name)
	case *schema.AddForeignKey:
		return fmt.Sprintf("Add foreign key %s", c.F.Symbol)
	case *schema.DropForeignKey:
		return fmt.Sprintf("Drop foreign key %s", c.F.Symbol)
	case *schema.AddCheck:
		return fmt.Sprintf("Add check %s", c.C.Name)
	case *schema.DropCheck:
		return fmt.Sprintf("Drop check %s", c.C.Name)
	default:
		return fmt.Sprintf("Change type %T", change)
	}
}

func CountDestructiveChanges(changes []schema.Change) (count int, descriptions []string) {
	for _, change := range changes {
		if IsDestructiveChange(change) {
			count++
			descriptions = append(descriptions, DescribeChange(change))
		}
	}
	return count, descriptions
}
