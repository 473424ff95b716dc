package tokenizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amankumarsingh77/region_tfidf/config"
)

func newTestRegistry(t *testing.T, files map[string]string) (*config.TokenizerConfig, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "region-tfidf-test", r.Header.Get("User-Agent"))
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return &config.TokenizerConfig{
		RegistryURL: srv.URL,
		Revision:    "main",
		CacheDir:    t.TempDir(),
		UserAgent:   "region-tfidf-test",
	}, &hits
}

func TestRegistrySnapshotWithSettings(t *testing.T) {
	cfg, hits := newTestRegistry(t, map[string]string{
		"/databio/r2v/resolve/main/tokenizer.toml": "universe = \"peaks.bed\"\n[special_tokens]\nunk_token = \"<unk>\"\n",
		"/databio/r2v/resolve/main/peaks.bed":      "chr1\t0\t10\nchr2\t5\t9\n",
	})

	tok, err := Load(context.Background(), "databio/r2v", cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, tok.VocabSize())
	assert.Equal(t, int32(2), hits.Load())

	// Second load is served from the cache.
	_, err = Load(context.Background(), "databio/r2v", cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRegistrySnapshotFallsBackToUniverse(t *testing.T) {
	cfg, _ := newTestRegistry(t, map[string]string{
		"/databio/r2v/resolve/main/universe.bed": "chr1\t0\t10\n",
	})

	tok, err := Load(context.Background(), "databio/r2v", cfg)
	require.NoError(t, err)
	assert.Equal(t, 8, tok.VocabSize())
}

func TestRegistrySnapshotNestedUniverse(t *testing.T) {
	cfg, _ := newTestRegistry(t, map[string]string{
		"/databio/r2v/resolve/main/tokenizer.toml": "universe = \"data/peaks.bed\"\n",
		"/databio/r2v/resolve/main/data/peaks.bed": "chr1\t0\t10\n",
	})

	tok, err := Load(context.Background(), "databio/r2v", cfg)
	require.NoError(t, err)
	assert.Equal(t, 8, tok.VocabSize())
}

func TestRegistryRejectsEscapingUniverse(t *testing.T) {
	cfg, hits := newTestRegistry(t, map[string]string{
		"/databio/r2v/resolve/main/tokenizer.toml": "universe = \"../evil.bed\"\n",
		"/databio/r2v/resolve/evil.bed":            "chr1\t0\t10\n",
	})

	_, err := Load(context.Background(), "databio/r2v", cfg)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRegistryNotFound(t *testing.T) {
	cfg, _ := newTestRegistry(t, nil)

	_, err := Load(context.Background(), "databio/missing", cfg)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidRepoID(t *testing.T) {
	assert.True(t, ValidRepoID("databio/r2v-encode"))
	assert.False(t, ValidRepoID("r2v"))
	assert.False(t, ValidRepoID("a/b/c"))
	assert.False(t, ValidRepoID("../b"))
	assert.False(t, ValidRepoID("a/"))
}
