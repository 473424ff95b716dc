// Package tfidf computes corpus-wide document frequencies, IDF weights and
// per-document TF-IDF vectors over token files.
package tfidf

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amankumarsingh77/region_tfidf/internal/corpus"
	"github.com/amankumarsingh77/region_tfidf/internal/tokenizer"
	"github.com/amankumarsingh77/region_tfidf/models"
)

// CorpusStats holds document frequencies and N, the number of documents
// with at least one non-special token.
type CorpusStats struct {
	DF map[models.TokenID]int
	N  int
}

func NewCorpusStats() *CorpusStats {
	return &CorpusStats{DF: make(map[models.TokenID]int)}
}

// Add counts one document given its distinct non-special tokens. An empty
// set leaves the stats untouched.
func (s *CorpusStats) Add(distinct []models.TokenID) {
	if len(distinct) == 0 {
		return
	}
	s.N++
	for _, id := range distinct {
		s.DF[id]++
	}
}

func (s *CorpusStats) VocabSize() int {
	return len(s.DF)
}

// Aggregate runs the statistics pass. Any read error aborts the pass since
// the resulting frequencies would be incomplete.
func Aggregate(ctx context.Context, sources []corpus.Source, specials tokenizer.SpecialTokenSet, workers int) (*CorpusStats, error) {
	return aggregate(ctx, sources, specials, workers, nil)
}

func aggregate(ctx context.Context, sources []corpus.Source, specials tokenizer.SpecialTokenSet, workers int, tick func()) (*CorpusStats, error) {
	stats := NewCorpusStats()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, src := range sources {
		src := src
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			doc, err := src.Document()
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", src.Path, err)
			}
			distinct := distinctTokens(doc.Tokens, specials)

			mu.Lock()
			stats.Add(distinct)
			mu.Unlock()

			if tick != nil {
				tick()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func distinctTokens(tokens []models.TokenID, specials tokenizer.SpecialTokenSet) []models.TokenID {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[models.TokenID]struct{}, len(tokens))
	out := make([]models.TokenID, 0, len(tokens))
	for _, id := range tokens {
		if specials.Contains(id) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
