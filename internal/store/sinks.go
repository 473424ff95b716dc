// Package store publishes TF-IDF results to the databases enabled in the
// config, next to the files the pipeline writes.
package store

import (
	"context"
	"errors"

	"github.com/amankumarsingh77/region_tfidf/config"
	"github.com/amankumarsingh77/region_tfidf/internal/tfidf"
)

// NewSinks connects every enabled backend. On failure the ones already
// connected are closed.
func NewSinks(ctx context.Context, cfg *config.Config) ([]tfidf.Sink, error) {
	var sinks []tfidf.Sink
	fail := func(err error) ([]tfidf.Sink, error) {
		return nil, errors.Join(err, CloseAll(sinks))
	}

	if cfg.DB.Enabled {
		pg, err := NewPostgresSink(ctx, &cfg.DB)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, pg)
	}
	if cfg.Mongo.Enabled {
		mg, err := NewMongoSink(ctx, &cfg.Mongo)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, mg)
	}
	if cfg.Redis.Enabled {
		rd, err := NewRedisSink(ctx, &cfg.Redis)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, rd)
	}
	return sinks, nil
}

func CloseAll(sinks []tfidf.Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
