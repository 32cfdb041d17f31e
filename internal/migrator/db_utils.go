package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/eleven-am/spycat/internal/logger"
)

// EnsureDatabaseExists creates the database if it doesn't exist
func EnsureDatabaseExists(ctx context.Context, dsn string) error {
	dbName, adminDSN, err := parseDSNForDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN: %w", err)
	}

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}
	defer db.Close()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := db.QueryRowContext(ctx, query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		log := logger.Migration()
		log.Info("Database does not exist, creating", "database", dbName)

		createSQL := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(dbName))
		if _, err := db.ExecContext(ctx, createSQL); err != nil {
			return fmt.Errorf("failed to create database '%s': %w", dbName, err)
		}

		log.Info("Database created", "database", dbName)
	}

	return nil
}

// parseDSNForDB extracts the database name and returns a DSN for the
// maintenance database on the same server.
func parseDSNForDB(dsn string) (dbName string, adminDSN string, err error) {
	if isURL(dsn) {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("invalid database URL format: %w", err)
		}
		dbName = strings.TrimPrefix(u.Path, "/")
		if dbName == "" {
			return "", "", fmt.Errorf("invalid database URL format")
		}
		u.Path = "/postgres"
		return dbName, u.String(), nil
	}

	params := make(map[string]string)
	var order []string
	for _, kv := range strings.Fields(dsn) {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			params[parts[0]] = parts[1]
			order = append(order, parts[0])
		}
	}

	dbName = params["dbname"]
	if dbName == "" {
		return "", "", fmt.Errorf("no database name found in DSN")
	}

	adminParts := make([]string, 0, len(order))
	for _, k := range order {
		if k == "dbname" {
			adminParts = append(adminParts, "dbname=postgres")
		} else {
			adminParts = append(adminParts, fmt.Sprintf("%s=%s", k, params[k]))
		}
	}
	return dbName, strings.Join(adminParts, " "), nil
}

// withDatabase returns rawURL pointing at another database on the same server.
func withDatabase(rawURL, dbName string) (string, error) {
	if !isURL(rawURL) {
		fields := strings.Fields(rawURL)
		replaced := false
		for i, kv := range fields {
			if strings.HasPrefix(kv, "dbname=") {
				fields[i] = "dbname=" + dbName
				replaced = true
			}
		}
		if !replaced {
			fields = append(fields, "dbname="+dbName)
		}
		return strings.Join(fields, " "), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	u.Path = "/" + dbName
	return u.String(), nil
}

func withQueryParam(rawURL, key, value string) (string, error) {
	if !isURL(rawURL) {
		return rawURL + fmt.Sprintf(" %s='%s'", key, value), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// quoteIdentifier quotes a PostgreSQL identifier to prevent SQL injection
func quoteIdentifier(name string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(name, `"`, `""`))
}
