package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankumarsingh77/region_tfidf/config"
	"github.com/amankumarsingh77/region_tfidf/internal/tfidf"
	"github.com/amankumarsingh77/region_tfidf/models"
)

type PostgresSink struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewPostgresSink(ctx context.Context, cfg *config.PostgresConfig) (*PostgresSink, error) {
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DBURL is empty in config")
	}

	pgConfig, err := pgxpool.ParseConfig(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}
	pgConfig.MaxConns = int32(max(cfg.PoolSize, 1))
	pgConfig.MinConns = 1

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pgConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}
	if _, err := pool.Exec(ctx, createSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &PostgresSink{pool: pool, batchSize: batchSize}, nil
}

// PublishIDF records the run and stores its weights in batches of batchSize
// token ids.
func (s *PostgresSink) PublishIDF(ctx context.Context, run tfidf.RunInfo, idf tfidf.IDFTable) error {
	ids := make([]int64, 0, len(idf))
	for id := range idf {
		ids = append(ids, int64(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	batch := &pgx.Batch{}
	corpusSize, policy := runColumns(run)
	batch.Queue(insertRun, run.ID, corpusSize, policy, run.StartedAt)
	for i := 0; i < len(ids); i += s.batchSize {
		end := min(i+s.batchSize, len(ids))
		weights := make([]float64, end-i)
		for j, id := range ids[i:end] {
			weights[j] = idf[models.TokenID(id)]
		}
		batch.Queue(insertIDFWeights, run.ID, ids[i:end], weights)
	}

	results := s.pool.SendBatch(ctx, batch)
	for j := 0; j < batch.Len(); j++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("error inserting idf weights [%d]: %w", j, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("error closing batch: %w", err)
	}
	return nil
}

// PublishScores replaces the stored vector of one accession.
func (s *PostgresSink) PublishScores(ctx context.Context, doc *models.DocumentScores) error {
	tokens := make([]int64, len(doc.Tokens))
	for i, t := range doc.Tokens {
		tokens[i] = int64(t)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteScores, doc.RunID, doc.Accession); err != nil {
			return fmt.Errorf("error clearing scores for %s: %w", doc.Accession, err)
		}
		if _, err := tx.Exec(ctx, insertScores, doc.RunID, doc.Accession, tokens, doc.Scores); err != nil {
			return fmt.Errorf("error inserting scores for %s: %w", doc.Accession, err)
		}
		return nil
	})
}

// runColumns leaves corpus_size and policy NULL for runs that reused an
// existing table.
func runColumns(run tfidf.RunInfo) (corpusSize, policy any) {
	if run.Reused {
		return nil, nil
	}
	return run.N, run.Policy.String()
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
