package tfidf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio/npz"
)

const (
	IDFFile   = "idf.json"
	ScoresDir = "tf-idf"

	artifactPerm = 0o644

	tokensArray = "tokens.npy"
	scoresArray = "scores.npy"
)

func ScoresPath(outDir, accession string) string {
	return filepath.Join(outDir, ScoresDir, accession+".npz")
}

// WriteIDF stores idf as a JSON object keyed by decimal token id. The file
// is replaced atomically.
func WriteIDF(path string, idf IDFTable) error {
	if idf == nil {
		idf = IDFTable{}
	}
	data, err := json.Marshal(idf)
	if err != nil {
		return fmt.Errorf("failed to marshal idf table: %w", err)
	}
	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

func ReadIDF(path string) (IDFTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read idf table: %w", err)
	}
	idf := IDFTable{}
	if err := json.Unmarshal(data, &idf); err != nil {
		return nil, fmt.Errorf("failed to decode idf table %s: %w", path, err)
	}
	return idf, nil
}

// WriteScores stores one document's vector as an npz archive holding the
// int32 "tokens" and float64 "scores" arrays.
func WriteScores(path string, scores SparseScores) error {
	if len(scores.Tokens) != len(scores.Scores) {
		return fmt.Errorf("tokens and scores differ in length: %d != %d", len(scores.Tokens), len(scores.Scores))
	}
	return writeAtomic(path, func(f *os.File) error {
		zw := npz.NewWriter(f)
		if err := zw.Write(tokensArray, scores.Tokens); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write tokens: %w", err)
		}
		if err := zw.Write(scoresArray, scores.Scores); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write scores: %w", err)
		}
		return zw.Close()
	})
}

func ReadScores(path string) (SparseScores, error) {
	zr, err := npz.Open(path)
	if err != nil {
		return SparseScores{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer zr.Close()

	var out SparseScores
	if err := zr.Read(tokensArray, &out.Tokens); err != nil {
		return SparseScores{}, fmt.Errorf("failed to read tokens: %w", err)
	}
	if err := zr.Read(scoresArray, &out.Scores); err != nil {
		return SparseScores{}, fmt.Errorf("failed to read scores: %w", err)
	}
	return out, nil
}

func writeAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	// CreateTemp opens with 0600.
	if err := tmp.Chmod(artifactPerm); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
