// Package gtok reads and writes .gtok files: a "GTOK" magic, a one byte
// width flag, then little-endian token ids until EOF.
package gtok

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/amankumarsingh77/region_tfidf/models"
)

const (
	Extension = ".gtok"

	flagU16 byte = 0
	flagU32 byte = 1
)

var magic = []byte("GTOK")

var (
	ErrBadHeader = errors.New("gtok: bad header")
	ErrTruncated = errors.New("gtok: truncated token stream")
)

func ReadTokens(path string) ([]models.TokenID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	tokens, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tokens, nil
}

// Decode reads a full gtok stream. An empty stream is an empty document.
func Decode(r io.Reader) ([]models.TokenID, error) {
	header := make([]byte, len(magic)+1)
	n, err := io.ReadFull(r, header)
	switch {
	case n == 0 && errors.Is(err, io.EOF):
		return []models.TokenID{}, nil
	case err != nil:
		return nil, ErrBadHeader
	}
	if string(header[:len(magic)]) != string(magic) {
		return nil, ErrBadHeader
	}

	var width int
	switch header[len(magic)] {
	case flagU16:
		width = 2
	case flagU32:
		width = 4
	default:
		return nil, fmt.Errorf("%w: unknown width flag %d", ErrBadHeader, header[len(magic)])
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(body)%width != 0 {
		return nil, ErrTruncated
	}

	tokens := make([]models.TokenID, 0, len(body)/width)
	for i := 0; i < len(body); i += width {
		if width == 2 {
			tokens = append(tokens, models.TokenID(binary.LittleEndian.Uint16(body[i:])))
		} else {
			tokens = append(tokens, binary.LittleEndian.Uint32(body[i:]))
		}
	}
	return tokens, nil
}
