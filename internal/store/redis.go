package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/amankumarsingh77/region_tfidf/config"
	"github.com/amankumarsingh77/region_tfidf/internal/tfidf"
	"github.com/amankumarsingh77/region_tfidf/models"
)

func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging the redis : %w", err)
	}
	return client, nil
}

type redisKeys struct {
	idf           string
	run           string
	done          string
	lastAccession string
}

func newRedisKeys(prefix string) redisKeys {
	if prefix == "" {
		prefix = "tfidf"
	}
	return redisKeys{
		idf:           prefix + ":idf",
		run:           prefix + ":run",
		done:          prefix + ":done",
		lastAccession: prefix + ":last_accession",
	}
}

// stale lists the keys a new run replaces. Resumed runs keep the done set
// and checkpoint, since skipped accessions are not published again.
func (k redisKeys) stale(run tfidf.RunInfo) []string {
	keys := []string{k.idf, k.run}
	if !run.Resume {
		keys = append(keys, k.done, k.lastAccession)
	}
	return keys
}

func runFields(run tfidf.RunInfo) map[string]any {
	if run.Reused {
		return map[string]any{"id": run.ID, "reused": 1}
	}
	return map[string]any{
		"id":     run.ID,
		"n":      run.N,
		"policy": run.Policy.String(),
	}
}

// RedisSink mirrors the IDF table into a hash and tracks which accessions
// have been scored in the current run.
type RedisSink struct {
	client *redis.Client
	keys   redisKeys
}

func NewRedisSink(ctx context.Context, cfg *config.RedisConfig) (*RedisSink, error) {
	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &RedisSink{client: client, keys: newRedisKeys(cfg.Prefix)}, nil
}

func (r *RedisSink) PublishIDF(ctx context.Context, run tfidf.RunInfo, idf tfidf.IDFTable) error {
	fields := idfFields(idf)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keys.stale(run)...)
		if len(fields) > 0 {
			pipe.HSet(ctx, r.keys.idf, fields)
		}
		pipe.HSet(ctx, r.keys.run, runFields(run))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish idf to redis: %w", err)
	}
	return nil
}

func (r *RedisSink) PublishScores(ctx context.Context, doc *models.DocumentScores) error {
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.keys.done, doc.Accession)
		pipe.Set(ctx, r.keys.lastAccession, doc.Accession, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark %s done: %w", doc.Accession, err)
	}
	return nil
}

func (r *RedisSink) Close() error {
	return r.client.Close()
}

func idfFields(idf tfidf.IDFTable) map[string]any {
	fields := make(map[string]any, len(idf))
	for id, w := range idf {
		fields[strconv.FormatUint(uint64(id), 10)] = strconv.FormatFloat(w, 'g', -1, 64)
	}
	return fields
}
