package tokenizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/amankumarsingh77/region_tfidf/config"
)

// Load resolves ref as a BED universe file, a tokenizer directory, or a
// registry repo id, in that order.
func Load(ctx context.Context, ref string, cfg *config.TokenizerConfig) (*Tokenizer, error) {
	info, err := os.Stat(ref)
	switch {
	case err == nil && info.IsDir():
		return FromDir(ref)
	case err == nil:
		return FromUniverse(ref, nil)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to stat tokenizer reference: %w", err)
	}

	dir, err := NewRegistry(cfg).Snapshot(ctx, ref)
	if err != nil {
		return nil, err
	}
	return FromDir(dir)
}
