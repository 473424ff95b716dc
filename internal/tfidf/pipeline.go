package tfidf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/amankumarsingh77/region_tfidf/internal/corpus"
	"github.com/amankumarsingh77/region_tfidf/internal/logging"
	"github.com/amankumarsingh77/region_tfidf/internal/tokenizer"
	"github.com/amankumarsingh77/region_tfidf/models"
)

type Mode string

const (
	// ModeTFIDF computes IDF weights and then scores every document.
	ModeTFIDF Mode = "tfidf"
	// ModeScore reuses an existing idf.json and only scores documents.
	ModeScore Mode = "score"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTFIDF, "":
		return ModeTFIDF, nil
	case ModeScore:
		return ModeScore, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type Options struct {
	Mode          Mode
	Policy        Policy
	Workers       int
	Ongoing       bool
	ProgressEvery int
	Scan          corpus.ScanOptions
}

type Summary struct {
	RunID     string
	Scanned   int
	N         int
	VocabSize int
	Written   int
	Skipped   int
	Excluded  int
	Failed    int
	Duration  time.Duration
}

func (s *Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("scanned", s.Scanned),
		slog.Int("n", s.N),
		slog.Int("vocab_size", s.VocabSize),
		slog.Int("written", s.Written),
		slog.Int("skipped", s.Skipped),
		slog.Int("excluded", s.Excluded),
		slog.Int("failed", s.Failed),
		slog.Duration("duration", s.Duration),
	)
}

type Pipeline struct {
	specials tokenizer.SpecialTokenSet
	opts     Options
	sinks    []Sink
	logger   *slog.Logger
}

func NewPipeline(specials tokenizer.SpecialTokenSet, opts Options, logger *slog.Logger, sinks ...Sink) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Mode == "" {
		opts.Mode = ModeTFIDF
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		specials: specials,
		opts:     opts,
		sinks:    sinks,
		logger:   logger,
	}
}

// Run scans corpusDir and writes idf.json and tf-idf/<accession>.npz under
// outDir. Failures of single documents while scoring are counted in the
// summary and do not stop the run.
func (p *Pipeline) Run(ctx context.Context, corpusDir, outDir string) (*Summary, error) {
	start := time.Now()
	logger := logging.WithContext(p.logger, ctx)
	summary := &Summary{RunID: logging.GetRunID(ctx)}

	sources, err := corpus.Scan(corpusDir, p.opts.Scan)
	if err != nil {
		return nil, err
	}
	summary.Scanned = len(sources)
	logger.Info("corpus scanned", "dir", corpusDir, "documents", len(sources), "mode", string(p.opts.Mode))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	idfPath := filepath.Join(outDir, IDFFile)

	var idf IDFTable
	switch p.opts.Mode {
	case ModeScore:
		idf, err = ReadIDF(idfPath)
		if err != nil {
			return nil, err
		}
		summary.VocabSize = len(idf)
		logger.Info("loaded idf table", "path", idfPath, "tokens", len(idf))
	default:
		stats, err := aggregate(ctx, sources, p.specials, p.opts.Workers, p.progress(logger, "statistics", len(sources)))
		if err != nil {
			return nil, fmt.Errorf("statistics pass failed: %w", err)
		}
		summary.N = stats.N
		summary.Excluded = len(sources) - stats.N
		summary.VocabSize = stats.VocabSize()
		idf = ComputeIDF(stats, p.opts.Policy)
		if err := WriteIDF(idfPath, idf); err != nil {
			return nil, fmt.Errorf("failed to persist idf table: %w", err)
		}
		logger.Info("idf table written", "path", idfPath, "n", stats.N, "tokens", len(idf), "policy", p.opts.Policy.String())
	}

	run := RunInfo{
		ID:        summary.RunID,
		N:         summary.N,
		Policy:    p.opts.Policy,
		StartedAt: start,
		Reused:    p.opts.Mode == ModeScore,
		Resume:    p.opts.Ongoing,
	}
	for _, sink := range p.sinks {
		if err := sink.PublishIDF(ctx, run, idf); err != nil {
			return nil, fmt.Errorf("failed to publish idf table: %w", err)
		}
	}

	if len(idf) > 0 {
		if err := p.score(ctx, logger, sources, idf, outDir, summary); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
	}

	summary.Duration = time.Since(start)
	logger.Info("run finished", "summary", summary)
	return summary, nil
}

func (p *Pipeline) score(ctx context.Context, logger *slog.Logger, sources []corpus.Source, idf IDFTable, outDir string, summary *Summary) error {
	if err := os.MkdirAll(filepath.Join(outDir, ScoresDir), 0o755); err != nil {
		return fmt.Errorf("failed to create scores dir: %w", err)
	}

	var written, skipped, excluded, failed atomic.Int64
	tick := p.progress(logger, "scoring", len(sources))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for _, src := range sources {
		src := src
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer tick()
			path := ScoresPath(outDir, src.Accession)
			if p.opts.Ongoing && fileExists(path) {
				skipped.Add(1)
				return nil
			}
			ok, err := p.scoreOne(ctx, src, idf, path)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Error("failed to score document", "accession", src.Accession, "path", src.Path, "error", err)
			case ok:
				written.Add(1)
			default:
				excluded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.Written = int(written.Load())
	summary.Skipped = int(skipped.Load())
	summary.Failed = int(failed.Load())
	if p.opts.Mode == ModeScore {
		summary.Excluded = int(excluded.Load())
	}
	return ctx.Err()
}

// scoreOne reports whether a result file was written for src.
func (p *Pipeline) scoreOne(ctx context.Context, src corpus.Source, idf IDFTable, path string) (bool, error) {
	doc, err := src.Document()
	if err != nil {
		return false, err
	}
	if err := checkTokenRange(doc.Tokens, p.specials, idf); err != nil {
		return false, err
	}
	scores := ScoreDocument(doc.Tokens, p.specials, idf)
	if scores.Len() == 0 {
		return false, nil
	}
	if err := WriteScores(path, scores); err != nil {
		return false, err
	}

	if len(p.sinks) == 0 {
		return true, nil
	}
	result := &models.DocumentScores{
		Accession: doc.Accession,
		RunID:     logging.GetRunID(ctx),
		Tokens:    scores.Tokens,
		Scores:    scores.Scores,
		UpdatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.PublishScores(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return false, fmt.Errorf("failed to publish scores: %w", err)
	}
	return true, nil
}

func (p *Pipeline) progress(logger *slog.Logger, pass string, total int) func() {
	every := int64(p.opts.ProgressEvery)
	if every <= 0 {
		return func() {}
	}
	var done atomic.Int64
	return func() {
		if n := done.Add(1); n%every == 0 || n == int64(total) {
			logger.Info("progress", "pass", pass, "done", n, "total", total)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
