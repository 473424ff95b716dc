package tfidf

import (
	"context"
	"time"

	"github.com/amankumarsingh77/region_tfidf/models"
)

type RunInfo struct {
	ID        string
	N         int
	Policy    Policy
	StartedAt time.Time
	// Reused runs loaded their weights from an existing idf.json, so N and
	// Policy do not describe them.
	Reused bool
	// Resume is set for -ongoing runs, which keep earlier per-document state.
	Resume bool
}

// Sink receives run results besides the files on disk. The IDF table is
// always published before any document scores of the same run.
type Sink interface {
	PublishIDF(ctx context.Context, run RunInfo, idf IDFTable) error
	PublishScores(ctx context.Context, doc *models.DocumentScores) error
	Close() error
}
