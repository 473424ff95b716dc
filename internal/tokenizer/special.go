package tokenizer

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/amankumarsingh77/region_tfidf/models"
)

type Encoder interface {
	Encode(text string) ([]models.TokenID, error)
}

// SingleEncoder is implemented by encoders that return one id per token text.
type SingleEncoder interface {
	EncodeOne(text string) (models.TokenID, error)
}

var errEmptyEncoding = errors.New("encoding produced no ids")

type SpecialTokenSet map[models.TokenID]struct{}

func (s SpecialTokenSet) Contains(id models.TokenID) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order.
func (s SpecialTokenSet) IDs() []models.TokenID {
	ids := make([]models.TokenID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ResolveSpecialTokens encodes every declared special token. Tokens that fail
// to encode are left out of the set.
func ResolveSpecialTokens(enc Encoder, specials map[string]string) SpecialTokenSet {
	set := make(SpecialTokenSet, len(specials))
	for role, text := range specials {
		if text == "" {
			continue
		}
		id, err := encodeSpecial(enc, text)
		if err != nil {
			slog.Debug("skipping special token", "role", role, "token", text, "error", err)
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func encodeSpecial(enc Encoder, text string) (models.TokenID, error) {
	if single, ok := enc.(SingleEncoder); ok {
		return single.EncodeOne(text)
	}
	ids, err := enc.Encode(text)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, errEmptyEncoding
	}
	return ids[0], nil
}
