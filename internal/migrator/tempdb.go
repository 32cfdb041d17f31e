package migrator

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eleven-am/spycat/internal/logger"
)

// TempDBManager creates throwaway databases on the configured server. The
// desired schema is loaded into one so atlas can inspect it.
type TempDBManager struct {
	baseConfig *DBConfig
}

func NewTempDBManager(config *DBConfig) *TempDBManager {
	return &TempDBManager{baseConfig: config}
}

func (m *TempDBManager) buildTempDBURL(tempDBName string) string {
	u, err := withDatabase(m.baseConfig.URL, tempDBName)
	if err != nil {
		return m.baseConfig.URL
	}
	return u
}

// CreateTempDB creates tempDBName and returns a connection to it. cleanup
// closes the connection and drops the database.
func (m *TempDBManager) CreateTempDB(ctx context.Context, tempDBName string) (*sql.DB, func(), error) {
	_, adminDSN, err := parseDSNForDB(m.baseConfig.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	admin, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to admin database: %w", err)
	}

	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+quoteIdentifier(tempDBName)); err != nil {
		admin.Close()
		return nil, nil, fmt.Errorf("failed to create temp database: %w", err)
	}

	dropDB := func() {
		if _, err := admin.ExecContext(context.Background(), "DROP DATABASE IF EXISTS "+quoteIdentifier(tempDBName)); err != nil {
			logger.Migration().Warn("Failed to drop temp database", "database", tempDBName, "err", err)
		}
		admin.Close()
	}

	tempDB, err := sql.Open("postgres", m.buildTempDBURL(tempDBName))
	if err != nil {
		dropDB()
		return nil, nil, fmt.Errorf("failed to open temp database: %w", err)
	}
	if err := tempDB.PingContext(ctx); err != nil {
		tempDB.Close()
		dropDB()
		return nil, nil, fmt.Errorf("failed to connect to temp database: %w", err)
	}

	cleanup := func() {
		tempDB.Close()
		dropDB()
	}
	return tempDB, cleanup, nil
}
