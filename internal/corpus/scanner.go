package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/amankumarsingh77/region_tfidf/internal/gtok"
	"github.com/amankumarsingh77/region_tfidf/models"
)

var ErrDuplicateAccession = errors.New("duplicate accession in corpus")

type ScanOptions struct {
	Extension string
	Recursive bool
}

// Source is one token file in the corpus. Tokens are loaded lazily so each
// pass can stream the corpus without holding it in memory.
type Source struct {
	Accession string
	Path      string
}

func (s Source) Load() ([]models.TokenID, error) {
	return gtok.ReadTokens(s.Path)
}

func (s Source) Document() (models.TokenDocument, error) {
	tokens, err := s.Load()
	if err != nil {
		return models.TokenDocument{}, err
	}
	return models.TokenDocument{Accession: s.Accession, Path: s.Path, Tokens: tokens}, nil
}

// Scan lists token files under dir sorted by path. Two files that map to the
// same accession are rejected before any statistics are computed.
func Scan(dir string, opts ScanOptions) ([]Source, error) {
	ext := opts.Extension
	if ext == "" {
		ext = gtok.Extension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var paths []string
	if opts.Recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if strings.HasSuffix(d.Name(), ext) && isRegular(path, d) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk corpus: %w", err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if strings.HasSuffix(e.Name(), ext) && isRegular(path, e) {
				paths = append(paths, path)
			}
		}
	}
	sort.Strings(paths)

	sources := make([]Source, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		acc := Accession(p, ext)
		if prev, ok := seen[acc]; ok {
			return nil, fmt.Errorf("%w: %q from %s and %s", ErrDuplicateAccession, acc, prev, p)
		}
		seen[acc] = p
		sources = append(sources, Source{Accession: acc, Path: p})
	}
	return sources, nil
}

// isRegular follows symlinks so linked token files count as documents.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func Accession(path, ext string) string {
	return norm.NFC.String(strings.TrimSuffix(filepath.Base(path), ext))
}
