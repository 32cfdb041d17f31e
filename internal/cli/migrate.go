package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/eleven-am/spycat/internal/migrator"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	migrateApply            bool
	migrateAllowDestructive bool
	migrateCreateDB         bool
	migrateTimeout          time.Duration
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Diff and apply the database schema",
	Long: `Compare the live database with the agency schema and print the
statements needed to bring it up to date. Nothing is executed unless --apply is
given, and destructive changes additionally require --allow-destructive.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateApply, "apply", false, "Execute the planned statements")
	migrateCmd.Flags().BoolVar(&migrateAllowDestructive, "allow-destructive", false, "Allow potentially destructive operations")
	migrateCmd.Flags().BoolVar(&migrateCreateDB, "create-db", false, "Create the database if it does not exist")
	migrateCmd.Flags().DurationVar(&migrateTimeout, "timeout", 5*time.Minute, "Overall migration timeout")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
	defer cancel()

	if agencyCfg.Database.URL == "" {
		return fmt.Errorf("database connection required: use --url, DATABASE_URL or database.url in agency.yaml")
	}

	out := cmd.OutOrStdout()

	if migrateCreateDB {
		if err := migrator.EnsureDatabaseExists(ctx, agencyCfg.Database.URL); err != nil {
			return err
		}
	}

	dbConfig := agencyCfg.DBConfig()
	// DDL on an empty instance can outlast the request-oriented timeout.
	dbConfig.StatementTimeout = 0

	db, err := dbConfig.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	plan, err := migrator.NewMigrator(dbConfig).Plan(ctx, db.DB, false)
	if err != nil {
		return fmt.Errorf("failed to plan migration: %w", err)
	}

	if plan.Empty() {
		fmt.Fprintln(out, color.New(color.FgGreen).Sprint("Schema is up to date."))
		return nil
	}

	printPlan(out, plan)

	if !migrateApply {
		fmt.Fprintln(out, "\nDry run. Re-run with --apply to execute.")
		return nil
	}

	err = migrator.Apply(ctx, db.DB, plan, migrator.ApplyOptions{AllowDestructive: migrateAllowDestructive})
	var destructive *migrator.DestructiveChangesError
	if errors.As(err, &destructive) {
		fmt.Fprintln(out, color.New(color.FgRed, color.Bold).Sprint("\nPOTENTIALLY DESTRUCTIVE OPERATIONS DETECTED"))
		fmt.Fprintln(out, "Use --allow-destructive to proceed. Review the changes carefully as they may cause data loss.")
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s Applied %d statement(s).\n", color.New(color.FgGreen).Sprint("OK"), len(plan.Statements))
	return nil
}

func printPlan(out io.Writer, plan *migrator.Plan) {
	fmt.Fprintf(out, "Found %d change(s):\n", len(plan.Changes))
	for _, change := range plan.Changes {
		label := color.New(color.FgGreen).Sprint("CHANGE ")
		if migrator.IsDestructiveChange(change) {
			label = color.New(color.FgRed).Sprint("DESTROY")
		}
		fmt.Fprintf(out, "  %s %s\n", label, migrator.DescribeChange(change))
	}

	fmt.Fprintf(out, "\nStatements:\n")
	for i, stmt := range plan.Statements {
		fmt.Fprintf(out, "-- Statement %d\n%s;\n\n", i+1, stmt)
	}
}
