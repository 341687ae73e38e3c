package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Lexicon holds the hand-curated keyword sets used for comment sentiment
// classification and keyword extraction.
type Lexicon struct {
	Positive     []string `yaml:"positive"`
	Negative     []string `yaml:"negative"`
	Constructive []string `yaml:"constructive"`
	Stopwords    []string `yaml:"stopwords"`

	positive     map[string]struct{}
	negative     map[string]struct{}
	constructive map[string]struct{}
	stopwords    map[string]struct{}
}

// Default returns the lexicon embedded in the binary.
func Default() (*Lexicon, error) {
	return Parse(defaultYAML)
}

// MustDefault is like Default but panics on error.
func MustDefault() *Lexicon {
	l, err := Default()
	if err != nil {
		panic(err)
	}
	return l
}

// Load reads a lexicon from a YAML file. An empty path yields the default lexicon.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return l, nil
}

// Parse decodes and validates a YAML lexicon.
func Parse(data []byte) (*Lexicon, error) {
	var l Lexicon
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal lexicon: %w", err)
	}
	if err := l.build(); err != nil {
		return nil, err
	}
	return &l, nil
}

// New builds a lexicon from in-memory lists.
func New(positive, negative, constructive, stopwords []string) (*Lexicon, error) {
	l := &Lexicon{
		Positive:     positive,
		Negative:     negative,
		Constructive: constructive,
		Stopwords:    stopwords,
	}
	if err := l.build(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Lexicon) build() error {
	var err error
	if l.positive, err = toSet("positive", l.Positive); err != nil {
		return err
	}
	if l.negative, err = toSet("negative", l.Negative); err != nil {
		return err
	}
	if l.constructive, err = toSet("constructive", l.Constructive); err != nil {
		return err
	}
	if l.stopwords, err = toSet("stopwords", l.Stopwords); err != nil {
		return err
	}
	return nil
}

func toSet(list string, words []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		for _, r := range w {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return nil, fmt.Errorf("lexicon %s entry %q: must be a single alphanumeric token", list, w)
			}
		}
		set[w] = struct{}{}
	}
	return set, nil
}

func (l *Lexicon) IsPositive(token string) bool     { return has(l.positive, token) }
func (l *Lexicon) IsNegative(token string) bool     { return has(l.negative, token) }
func (l *Lexicon) IsConstructive(token string) bool { return has(l.constructive, token) }
func (l *Lexicon) IsStopword(token string) bool     { return has(l.stopwords, token) }

func has(set map[string]struct{}, token string) bool {
	_, ok := set[token]
	return ok
}
