package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/eleven-am/spycat/internal/agency"
	"github.com/eleven-am/spycat/internal/logger"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <name>",
	Short: "Grant staff privileges to a cat",
	Long: `Marks the named cat as staff so it can use the admin API. This is how
the first administrator is created.`,
	Args: cobra.ExactArgs(1),
	RunE: runPromote,
}

func runPromote(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	// Promotion never issues tokens or checks breeds.
	service := agency.NewService(orm.NewSession(db, orm.LoggingMiddleware(logger.DB())), nil, nil)

	cat, err := service.PromoteByName(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to promote %q: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is now staff\n", cat.Name)
	return nil
}
