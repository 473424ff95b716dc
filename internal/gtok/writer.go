package gtok

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/amankumarsingh77/region_tfidf/models"
)

func WriteTokens(path string, tokens []models.TokenID) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, tokens); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode uses 16-bit ids unless some id does not fit.
func Encode(w io.Writer, tokens []models.TokenID) error {
	flag := flagU16
	for _, t := range tokens {
		if t > math.MaxUint16 {
			flag = flagU32
			break
		}
	}
	if _, err := w.Write(append(append([]byte{}, magic...), flag)); err != nil {
		return err
	}

	var buf [4]byte
	for _, t := range tokens {
		var err error
		if flag == flagU16 {
			binary.LittleEndian.PutUint16(buf[:2], uint16(t))
			_, err = w.Write(buf[:2])
		} else {
			binary.LittleEndian.PutUint32(buf[:], t)
			_, err = w.Write(buf[:])
		}
		if err != nil {
			return err
		}
	}
	return nil
}
