package tfidf

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amankumarsingh77/region_tfidf/internal/corpus"
	"github.com/amankumarsingh77/region_tfidf/internal/gtok"
	"github.com/amankumarsingh77/region_tfidf/internal/tokenizer"
	"github.com/amankumarsingh77/region_tfidf/models"
)

const eps = 1e-9

func writeCorpus(t *testing.T, docs map[string][]models.TokenID) string {
	t.Helper()
	dir := t.TempDir()
	for acc, tokens := range docs {
		require.NoError(t, gtok.WriteTokens(filepath.Join(dir, acc+gtok.Extension), tokens))
	}
	return dir
}

func assertWorldReadable(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), path)
}

func scan(t *testing.T, dir string) []corpus.Source {
	t.Helper()
	sources, err := corpus.Scan(dir, corpus.ScanOptions{})
	require.NoError(t, err)
	return sources
}

func TestAggregateWorkedExample(t *testing.T) {
	dir := writeCorpus(t, map[string][]models.TokenID{
		"A": {1, 1, 2},
		"B": {2, 3},
	})

	stats, err := Aggregate(context.Background(), scan(t, dir), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.N)
	assert.Equal(t, map[models.TokenID]int{1: 1, 2: 2, 3: 1}, stats.DF)
}

func TestAggregateExcludesSpecials(t *testing.T) {
	dir := writeCorpus(t, map[string][]models.TokenID{
		"A":     {1, 0, 2},
		"empty": {},
		"pads":  {0, 0, 9},
	})
	specials := tokenizer.SpecialTokenSet{0: {}, 9: {}}

	stats, err := Aggregate(context.Background(), scan(t, dir), specials, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.N)
	assert.Equal(t, map[models.TokenID]int{1: 1, 2: 1}, stats.DF)
	for id, df := range stats.DF {
		assert.GreaterOrEqual(t, df, 1)
		assert.False(t, specials.Contains(id))
	}
}

func TestAggregateReadErrorIsFatal(t *testing.T) {
	dir := writeCorpus(t, map[string][]models.TokenID{"A": {1}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.gtok"), []byte("NOPE"), 0o644))

	_, err := Aggregate(context.Background(), scan(t, dir), nil, 1)
	assert.ErrorIs(t, err, gtok.ErrBadHeader)
}

func TestComputeIDF(t *testing.T) {
	stats := &CorpusStats{N: 2, DF: map[models.TokenID]int{1: 1, 2: 2, 3: 1}}

	smoothed := ComputeIDF(stats, Smoothed)
	assert.InDelta(t, math.Log(1.5)+1, smoothed[1], eps)
	assert.InDelta(t, 1.0, smoothed[2], eps)
	assert.InDelta(t, math.Log(1.5)+1, smoothed[3], eps)

	raw := ComputeIDF(stats, Raw)
	assert.InDelta(t, math.Ln2, raw[1], eps)
	assert.Equal(t, 0.0, raw[2])
	assert.InDelta(t, math.Ln2, raw[3], eps)
}

func TestComputeIDFProperties(t *testing.T) {
	stats := &CorpusStats{N: 5, DF: map[models.TokenID]int{1: 1, 2: 3, 3: 5, 4: 4}}
	smoothed := ComputeIDF(stats, Smoothed)
	raw := ComputeIDF(stats, Raw)

	require.Len(t, smoothed, len(stats.DF))
	require.Len(t, raw, len(stats.DF))
	for id, df := range stats.DF {
		assert.Greater(t, smoothed[id], 0.0)
		assert.False(t, math.IsInf(smoothed[id], 0))
		if df == stats.N {
			assert.Equal(t, 0.0, raw[id])
		} else {
			assert.Greater(t, raw[id], 0.0)
		}
	}
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, Smoothed, PolicyFor(true))
	assert.Equal(t, Raw, PolicyFor(false))
	assert.Equal(t, "raw", Raw.String())
}

func TestScoreDocument(t *testing.T) {
	idf := IDFTable{1: math.Log(1.5) + 1, 2: 1, 3: math.Log(1.5) + 1}

	a := ScoreDocument([]models.TokenID{1, 1, 2}, nil, idf)
	assert.Equal(t, []int32{1, 2}, a.Tokens)
	assert.InDelta(t, 0.9370, a.Scores[0], 1e-4)
	assert.InDelta(t, 0.3333, a.Scores[1], 1e-4)

	b := ScoreDocument([]models.TokenID{3, 2}, nil, idf)
	assert.Equal(t, []int32{2, 3}, b.Tokens)
	assert.InDelta(t, 0.5, b.Scores[0], 1e-4)
	assert.InDelta(t, 0.7028, b.Scores[1], 1e-4)
}

func TestScoreDocumentTFSumsToOne(t *testing.T) {
	tokens := []models.TokenID{5, 7, 7, 9, 9, 9, 0}
	specials := tokenizer.SpecialTokenSet{0: {}}
	ones := IDFTable{5: 1, 7: 1, 9: 1, 0: 1}

	scores := ScoreDocument(tokens, specials, ones)
	assert.Equal(t, []int32{5, 7, 9}, scores.Tokens)
	sum := 0.0
	for _, s := range scores.Scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		sum += s
	}
	assert.InDelta(t, 1.0, sum, eps)
}

func TestScoreDocumentEdgeCases(t *testing.T) {
	idf := IDFTable{1: 2}
	specials := tokenizer.SpecialTokenSet{0: {}}

	assert.Zero(t, ScoreDocument(nil, specials, idf).Len())
	assert.Zero(t, ScoreDocument([]models.TokenID{0, 0}, specials, idf).Len())

	// Unknown ids count towards the total but are not emitted.
	scores := ScoreDocument([]models.TokenID{1, 4}, specials, idf)
	assert.Equal(t, []int32{1}, scores.Tokens)
	assert.InDelta(t, 1.0, scores.Scores[0], eps)
}

func TestCheckTokenRange(t *testing.T) {
	big := models.TokenID(math.MaxInt32) + 1
	specials := tokenizer.SpecialTokenSet{math.MaxUint32: {}}
	idf := IDFTable{1: 1, big: 2, math.MaxUint32: 1}

	assert.NoError(t, checkTokenRange([]models.TokenID{1, math.MaxInt32}, specials, idf))
	// Specials and ids without a weight never reach the output.
	assert.NoError(t, checkTokenRange([]models.TokenID{1, math.MaxUint32, big + 1}, specials, idf))

	err := checkTokenRange([]models.TokenID{1, big}, specials, idf)
	assert.ErrorIs(t, err, ErrTokenOverflow)
}

func TestIDFFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), IDFFile)
	idf := IDFTable{10: 1.5, 2: 0.25}
	require.NoError(t, WriteIDF(path, idf))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"10": 1.5, "2": 0.25}`, string(data))

	got, err := ReadIDF(path)
	require.NoError(t, err)
	assert.Equal(t, idf, got)
	assertWorldReadable(t, path)
}

func TestWriteIDFEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), IDFFile)
	require.NoError(t, WriteIDF(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestScoresFileRoundTrip(t *testing.T) {
	path := ScoresPath(t.TempDir(), "GSM1")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	want := SparseScores{Tokens: []int32{1, 4, 70000}, Scores: []float64{0.5, 0.25, 0.125}}
	require.NoError(t, WriteScores(path, want))

	got, err := ReadScores(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assertWorldReadable(t, path)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteScoresMismatch(t *testing.T) {
	err := WriteScores(filepath.Join(t.TempDir(), "x.npz"), SparseScores{Tokens: []int32{1}})
	assert.Error(t, err)
}
