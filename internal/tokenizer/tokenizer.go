// Package tokenizer loads region-set tokenizers and resolves their special
// tokens to ids.
//
// A tokenizer's vocabulary is the list of universe regions, in file order,
// followed by its special tokens. Regions are addressed as "chr:start-end".
package tokenizer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/amankumarsingh77/region_tfidf/models"
)

var (
	ErrUnknownToken = errors.New("token not in vocabulary")
	ErrEmptyVocab   = errors.New("tokenizer universe is empty")
)

type Region struct {
	Chrom string
	Start uint64
	End   uint64
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

type SpecialToken struct {
	Role string
	Text string
}

// canonicalRoles fixes the vocabulary order of the well-known roles.
var canonicalRoles = []string{"unk_token", "pad_token", "mask_token", "cls_token", "bos_token", "eos_token", "sep_token"}

func DefaultSpecialTokens() map[string]string {
	return map[string]string{
		"unk_token":  "<unk>",
		"pad_token":  "<pad>",
		"mask_token": "<mask>",
		"cls_token":  "<cls>",
		"bos_token":  "<bos>",
		"eos_token":  "<eos>",
		"sep_token":  "<sep>",
	}
}

type Tokenizer struct {
	vocab    map[string]models.TokenID
	size     int
	specials map[string]string
}

// New builds a tokenizer from universe regions and a role -> text map of
// special tokens. Roles with empty text are declared but unset.
func New(regions []Region, specials map[string]string) (*Tokenizer, error) {
	if len(regions) == 0 {
		return nil, ErrEmptyVocab
	}
	t := &Tokenizer{
		vocab:    make(map[string]models.TokenID, len(regions)+len(specials)),
		specials: make(map[string]string, len(specials)),
	}
	for _, r := range regions {
		t.add(r.String())
	}
	for _, st := range orderedSpecials(specials) {
		t.specials[st.Role] = st.Text
		if st.Text != "" {
			t.add(st.Text)
		}
	}
	return t, nil
}

func (t *Tokenizer) add(text string) {
	if _, ok := t.vocab[text]; ok {
		return
	}
	t.vocab[text] = models.TokenID(t.size)
	t.size++
}

func orderedSpecials(specials map[string]string) []SpecialToken {
	out := make([]SpecialToken, 0, len(specials))
	known := make(map[string]bool, len(canonicalRoles))
	for _, role := range canonicalRoles {
		known[role] = true
		if text, ok := specials[role]; ok {
			out = append(out, SpecialToken{role, text})
		}
	}
	var extra []string
	for role := range specials {
		if !known[role] {
			extra = append(extra, role)
		}
	}
	sort.Strings(extra)
	for _, role := range extra {
		out = append(out, SpecialToken{role, specials[role]})
	}
	return out
}

// Encode maps one vocabulary entry to its id.
func (t *Tokenizer) Encode(text string) ([]models.TokenID, error) {
	id, ok := t.vocab[text]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownToken, text)
	}
	return []models.TokenID{id}, nil
}

// SpecialTokensMap returns a copy of the declared role -> text map.
func (t *Tokenizer) SpecialTokensMap() map[string]string {
	out := make(map[string]string, len(t.specials))
	for role, text := range t.specials {
		out[role] = text
	}
	return out
}

func (t *Tokenizer) VocabSize() int {
	return t.size
}
