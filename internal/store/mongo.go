package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amankumarsingh77/region_tfidf/config"
	"github.com/amankumarsingh77/region_tfidf/internal/tfidf"
	"github.com/amankumarsingh77/region_tfidf/models"
)

// MongoSink keeps one document per accession holding its latest vector.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoSink(ctx context.Context, cfg *config.MongoConfig) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(cfg.DBName).Collection(cfg.ScoreColl)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "accession", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create accession index: %w", err)
	}

	return &MongoSink{client: client, coll: coll}, nil
}

// PublishIDF is a no-op: weights live in idf.json and the SQL/Redis sinks.
func (m *MongoSink) PublishIDF(context.Context, tfidf.RunInfo, tfidf.IDFTable) error {
	return nil
}

func (m *MongoSink) PublishScores(ctx context.Context, doc *models.DocumentScores) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.coll.ReplaceOne(ctx,
		bson.M{"accession": doc.Accession},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert scores for %s: %w", doc.Accession, err)
	}
	return nil
}

func (m *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
