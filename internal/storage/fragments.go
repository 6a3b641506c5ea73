package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/logger"
)

var ErrNoFragments = errors.New("refusing to publish an empty corpus")

// replaces the stored corpus with cp and idx, keyed by corpus position.
// the delete and every insert share one transaction, so a failed publish
// leaves the previous corpus in place.
func (c *Client) ReplaceFragments(ctx context.Context, cp corpus.Corpus, idx corpus.Index) error {
	if err := corpus.Validate(cp, idx); err != nil {
		return err
	}

	if cp.Len() == 0 {
		return ErrNoFragments
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// defer rollback - will be no-op if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, deleteAllFragmentsQuery); err != nil {
		return fmt.Errorf("failed to clear fragments: %w", err)
	}

	batch := &pgx.Batch{}

	for i := range cp.Texts {
		batch.Queue(insertFragmentQuery,
			i,
			cp.Meta[i],
			cp.Texts[i],
			pgvector.NewVector(idx[i]),
		)
	}

	br := tx.SendBatch(ctx, batch)

	for i := range cp.Texts {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck,gosec // G104: error path cleanup
			return fmt.Errorf("failed to insert fragment %d: %w", i, err)
		}
	}

	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// returns the total number of fragments in the database
func (c *Client) GetFragmentCount(ctx context.Context) (int, error) {
	var count int

	err := c.pool.QueryRow(ctx, getFragmentCountQuery).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get fragment count: %w", err)
	}

	return count, nil
}

// reads the mirrored corpus back in position order
func (c *Client) LoadSnapshot(ctx context.Context) (*corpus.Snapshot, error) {
	rows, err := c.pool.Query(ctx, listFragmentsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query fragments: %w", err)
	}

	defer rows.Close()

	var (
		cp  corpus.Corpus
		idx corpus.Index
	)

	for rows.Next() {
		var (
			position  int
			program   string
			content   string
			embedding pgvector.Vector
		)

		if err := rows.Scan(&position, &program, &content, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}

		if position != cp.Len() {
			return nil, fmt.Errorf("fragment positions are not contiguous: expected %d, got %d", cp.Len(), position)
		}

		cp.Append(corpus.Fragment{Text: content, Program: corpus.Program(program)})
		idx = append(idx, embedding.Slice())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fragments: %w", err)
	}

	if err := corpus.Validate(cp, idx); err != nil {
		return nil, err
	}

	return &corpus.Snapshot{Corpus: cp, Index: idx}, nil
}
