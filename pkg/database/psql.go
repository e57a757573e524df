package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"outreach_messaging_service/pkg/logger"
)

// NewDatabaseConnection create a new postgresSQL connection pool
func NewDatabaseConnection(d Connection) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	dbConfig, err := pgxpool.ParseConfig(d.ConnectStr)
	if err != nil {
		return nil, fmt.Errorf("parse pg config: %w", err)
	}

	for i := 0; i <= d.RetryCount; i++ {
		pool, err = pgxpool.ConnectConfig(context.Background(), dbConfig)
		if err == nil {
			if pingErr := pool.Ping(context.Background()); pingErr == nil {
				return pool, nil
			} else {
				err = pingErr
			}
		}

		logger.Log.Warn(fmt.Sprintf("postgres connect attempt %d failed: %v", i+1, err))
		if i < d.RetryCount {
			time.Sleep(d.RetryInterval)
		}
	}

	return nil, fmt.Errorf("failed to connect to postgres after retries: %w", err)
}
