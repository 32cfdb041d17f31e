package migrator

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type DBConfig struct {
	URL              string
	ConnMaxLifetime  time.Duration
	MaxOpenConns     int
	MaxIdleConns     int
	StatementTimeout time.Duration
}

func NewDBConfig(url string) *DBConfig {
	return &DBConfig{
		URL:              url,
		ConnMaxLifetime:  10 * time.Minute,
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		StatementTimeout: 30 * time.Second,
	}
}

// Connect opens a pool and verifies it with a ping.
func (cfg *DBConfig) Connect(ctx context.Context) (*sqlx.DB, error) {
	url, err := cfg.connectionURL()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// connectionURL applies the statement timeout as a connection option so it
// holds for every pooled connection.
func (cfg *DBConfig) connectionURL() (string, error) {
	if cfg.StatementTimeout <= 0 {
		return cfg.URL, nil
	}
	return withQueryParam(cfg.URL, "options", fmt.Sprintf("-c statement_timeout=%d", cfg.StatementTimeout.Milliseconds()))
}
