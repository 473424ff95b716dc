package tokenizer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amankumarsingh77/region_tfidf/models"
)

const sampleBED = `# universe
track name=test
chr1	100	200
chr1	300	400	peak
chr2	0	50
chr1	100	200
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseBED(t *testing.T) {
	regions, err := parseBED(strings.NewReader(sampleBED))
	require.NoError(t, err)
	require.Len(t, regions, 4)
	assert.Equal(t, "chr1:100-200", regions[0].String())
	assert.Equal(t, "chr2:0-50", regions[2].String())
}

func TestParseBEDErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", "chr1\t100\n"},
		{"bad start", "chr1\tx\t200\n"},
		{"bad end", "chr1\t100\t-5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBED(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestNewAssignsIDs(t *testing.T) {
	regions, err := parseBED(strings.NewReader(sampleBED))
	require.NoError(t, err)

	tok, err := New(regions, DefaultSpecialTokens())
	require.NoError(t, err)

	// Three distinct regions, then seven canonical specials.
	assert.Equal(t, 10, tok.VocabSize())

	ids, err := tok.Encode("chr1:300-400")
	require.NoError(t, err)
	assert.Equal(t, []models.TokenID{1}, ids)

	ids, err = tok.Encode("<unk>")
	require.NoError(t, err)
	assert.Equal(t, []models.TokenID{3}, ids)

	ids, err = tok.Encode("<sep>")
	require.NoError(t, err)
	assert.Equal(t, []models.TokenID{9}, ids)

	_, err = tok.Encode("chr9:1-2")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestNewOrdersExtraRoles(t *testing.T) {
	regions := []Region{{"chr1", 0, 10}}
	tok, err := New(regions, map[string]string{
		"zeta_token":  "<z>",
		"alpha_token": "<a>",
		"pad_token":   "<pad>",
		"mask_token":  "",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, tok.VocabSize())

	for text, want := range map[string]models.TokenID{"<pad>": 1, "<a>": 2, "<z>": 3} {
		ids, err := tok.Encode(text)
		require.NoError(t, err)
		assert.Equal(t, []models.TokenID{want}, ids, text)
	}

	specials := tok.SpecialTokensMap()
	assert.Equal(t, "", specials["mask_token"])
	specials["pad_token"] = "changed"
	assert.Equal(t, "<pad>", tok.SpecialTokensMap()["pad_token"])
}

func TestNewEmptyUniverse(t *testing.T) {
	_, err := New(nil, DefaultSpecialTokens())
	assert.ErrorIs(t, err, ErrEmptyVocab)
}

func TestReadUniverseGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "universe.bed.gz")

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(sampleBED))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	regions, err := ReadUniverse(path)
	require.NoError(t, err)
	assert.Len(t, regions, 4)
}

func TestFromDirWithSettings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "regions.bed"), "chr1\t0\t10\nchr1\t10\t20\n")
	writeFile(t, filepath.Join(dir, SettingsFile), `universe = "regions.bed"

[special_tokens]
unk_token = "<unk>"
pad_token = "<pad>"
`)

	tok, err := FromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, tok.VocabSize())
	assert.Equal(t, map[string]string{"unk_token": "<unk>", "pad_token": "<pad>"}, tok.SpecialTokensMap())
}

func TestFromDirDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "universe.bed"), "chr1\t0\t10\n")

	tok, err := FromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, tok.VocabSize())
}

func TestFromDirMissingUniverse(t *testing.T) {
	_, err := FromDir(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	bed := filepath.Join(dir, "universe.bed")
	writeFile(t, bed, "chr1\t0\t10\n")

	byFile, err := Load(context.Background(), bed, nil)
	require.NoError(t, err)
	byDir, err := Load(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, byFile.VocabSize(), byDir.VocabSize())
}
