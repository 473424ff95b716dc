package tokenizer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const SettingsFile = "tokenizer.toml"

// universeCandidates are tried in order when a directory has no settings file.
var universeCandidates = []string{"universe.bed.gz", "universe.bed"}

type Settings struct {
	Universe      string            `mapstructure:"universe"`
	SpecialTokens map[string]string `mapstructure:"special_tokens"`
}

func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read tokenizer settings %w", err)
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding tokenizer settings %w", err)
	}
	return &s, nil
}

// FromDir loads a tokenizer directory: tokenizer.toml when present,
// otherwise the first universe file found with default special tokens.
func FromDir(dir string) (*Tokenizer, error) {
	settings := &Settings{}
	if path := filepath.Join(dir, SettingsFile); exists(path) {
		s, err := LoadSettings(path)
		if err != nil {
			return nil, err
		}
		settings = s
	}

	universe := settings.Universe
	if universe == "" {
		for _, name := range universeCandidates {
			if exists(filepath.Join(dir, name)) {
				universe = name
				break
			}
		}
	}
	if universe == "" {
		return nil, fmt.Errorf("%w: no universe file in %s", ErrNotFound, dir)
	}

	specials := settings.SpecialTokens
	if specials == nil {
		specials = DefaultSpecialTokens()
	}
	return FromUniverse(filepath.Join(dir, universe), specials)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
