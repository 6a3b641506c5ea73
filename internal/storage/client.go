package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgres mirror of the corpus and its embeddings
type Client struct {
	pool    *pgxpool.Pool
	ownPool bool
}

func NewClient(ctx context.Context, connString string) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// use simple protocol for PgBouncer transaction pooling compatibility
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{pool: pool, ownPool: true}, nil
}

// wraps a pool owned by the caller; Close leaves it open
func NewClientFromPool(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

func (c *Client) Close() {
	if c.ownPool {
		c.pool.Close()
	}
}

// creates the vector extension and the fragments table when missing
func (c *Client) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{createExtensionQuery, createFragmentsTableQuery, createFragmentsProgramIndexQuery} {
		if _, err := c.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}
