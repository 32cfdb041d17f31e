package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eleven-am/spycat/internal/agency"
	"github.com/eleven-am/spycat/internal/api"
	"github.com/eleven-am/spycat/internal/auth"
	"github.com/eleven-am/spycat/internal/breeds"
	"github.com/eleven-am/spycat/internal/logger"
	"github.com/eleven-am/spycat/internal/migrator"
	"github.com/eleven-am/spycat/internal/orm"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Connect to the database and serve the agency API until interrupted.
With --migrate (or database.auto_migrate) pending non-destructive schema
changes are applied first.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending non-destructive schema changes before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := agencyCfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.CLI()

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if serveMigrate || agencyCfg.Database.AutoMigrate {
		if _, err := migrator.NewMigrator(agencyCfg.DBConfig()).Migrate(ctx, db.DB, migrator.ApplyOptions{}); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	authService, err := auth.NewService(agencyCfg.AuthConfig())
	if err != nil {
		return err
	}

	var validator breeds.Validator = breeds.AcceptAll{}
	if agencyCfg.BreedsEnabled() {
		validator = breeds.NewClient(agencyCfg.BreedsConfig())
	} else {
		log.Warn("breed validation disabled")
	}

	session := orm.NewSession(db, orm.LoggingMiddleware(logger.DB()))
	service := agency.NewService(session, authService, validator)

	server, err := api.NewServer(api.ServerConfig{
		Address:         agencyCfg.Address(),
		Handler:         api.NewHandler(service),
		ReadTimeout:     agencyCfg.Server.ReadTimeout,
		WriteTimeout:    agencyCfg.Server.WriteTimeout,
		ShutdownTimeout: agencyCfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}

func openDatabase(ctx context.Context) (*sqlx.DB, error) {
	if agencyCfg.Database.URL == "" {
		return nil, fmt.Errorf("database connection required: use --url, DATABASE_URL or database.url in agency.yaml")
	}
	db, err := agencyCfg.DBConfig().Connect(ctx)
	if err != nil {
		return nil, err
	}
	logger.DB().Debug("connected", "max_open_conns", agencyCfg.Database.MaxOpenConns)
	return db, nil
}
