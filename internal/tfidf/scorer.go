package tfidf

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/amankumarsingh77/region_tfidf/internal/tokenizer"
	"github.com/amankumarsingh77/region_tfidf/models"
)

var ErrTokenOverflow = errors.New("token id does not fit in int32")

// SparseScores is one document's TF-IDF vector as index-aligned arrays,
// ordered by ascending token id.
type SparseScores struct {
	Tokens []int32
	Scores []float64
}

func (s SparseScores) Len() int {
	return len(s.Tokens)
}

// ScoreDocument weighs each non-special token by count/total * idf. Tokens
// missing from idf are dropped; the result is empty when nothing is left.
func ScoreDocument(tokens []models.TokenID, specials tokenizer.SpecialTokenSet, idf IDFTable) SparseScores {
	counts := make(map[models.TokenID]int)
	total := 0
	for _, id := range tokens {
		if specials.Contains(id) {
			continue
		}
		counts[id]++
		total++
	}
	if total == 0 {
		return SparseScores{}
	}

	ids := make([]models.TokenID, 0, len(counts))
	for id := range counts {
		if _, ok := idf[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := SparseScores{
		Tokens: make([]int32, len(ids)),
		Scores: make([]float64, len(ids)),
	}
	for i, id := range ids {
		tf := float64(counts[id]) / float64(total)
		out.Tokens[i] = int32(id)
		out.Scores[i] = tf * idf[id]
	}
	return out
}

// checkTokenRange rejects documents whose scored ids cannot be stored in the
// int32 tokens array.
func checkTokenRange(tokens []models.TokenID, specials tokenizer.SpecialTokenSet, idf IDFTable) error {
	for _, id := range tokens {
		if id <= math.MaxInt32 || specials.Contains(id) {
			continue
		}
		if _, ok := idf[id]; ok {
			return fmt.Errorf("%w: %d", ErrTokenOverflow, id)
		}
	}
	return nil
}
