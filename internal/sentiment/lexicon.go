package sentiment

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsinsight/internal/analysis"
	"github.com/deusflow/newsinsight/internal/errs"
)

//go:embed lexicon.yaml
var builtinLexicon []byte

// Lexicon holds the word scores and modifiers shared by the lexicon signals.
// Keys are normalized with analysis.Normalize.
type Lexicon struct {
	valence      map[string]float64
	polarity     map[string]float64
	boosters     map[string]float64
	intensifiers map[string]float64
	negations    map[string]struct{}
	contrasts    map[string]struct{}
}

type lexiconFile struct {
	Words        map[string][]float64 `yaml:"words"`
	Boosters     map[string]float64   `yaml:"boosters"`
	Intensifiers map[string]float64   `yaml:"intensifiers"`
	Negations    []string             `yaml:"negations"`
	Contrasts    []string             `yaml:"contrasts"`
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
	defaultErr  error
)

// DefaultLexicon returns the built-in Spanish lexicon.
func DefaultLexicon() (*Lexicon, error) {
	defaultOnce.Do(func() {
		defaultLex, defaultErr = ParseLexicon(builtinLexicon)
	})
	return defaultLex, defaultErr
}

// LoadLexicon reads a lexicon from a YAML file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Config("load lexicon", fmt.Errorf("read %s: %w", path, err))
	}
	lex, err := ParseLexicon(data)
	if err != nil {
		return nil, errs.Config("load lexicon", fmt.Errorf("parse %s: %w", path, err))
	}
	return lex, nil
}

// ParseLexicon decodes a YAML lexicon. Every word entry must carry a valence
// in [-4, 4] and a polarity in [-1, 1].
func ParseLexicon(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	if len(f.Words) == 0 {
		return nil, fmt.Errorf("lexicon has no words")
	}

	lex := &Lexicon{
		valence:      make(map[string]float64, len(f.Words)),
		polarity:     make(map[string]float64, len(f.Words)),
		boosters:     make(map[string]float64, len(f.Boosters)),
		intensifiers: make(map[string]float64, len(f.Intensifiers)),
		negations:    make(map[string]struct{}, len(f.Negations)),
		contrasts:    make(map[string]struct{}, len(f.Contrasts)),
	}
	for w, scores := range f.Words {
		if len(scores) != 2 {
			return nil, fmt.Errorf("word %q: want [valence, polarity], got %d values", w, len(scores))
		}
		if scores[0] < -4 || scores[0] > 4 {
			return nil, fmt.Errorf("word %q: valence %v out of range", w, scores[0])
		}
		if scores[1] < -1 || scores[1] > 1 {
			return nil, fmt.Errorf("word %q: polarity %v out of range", w, scores[1])
		}
		key := analysis.Normalize(w)
		lex.valence[key] = scores[0]
		lex.polarity[key] = scores[1]
	}
	for w, v := range f.Boosters {
		lex.boosters[analysis.Normalize(w)] = v
	}
	for w, v := range f.Intensifiers {
		lex.intensifiers[analysis.Normalize(w)] = v
	}
	for _, w := range f.Negations {
		lex.negations[analysis.Normalize(w)] = struct{}{}
	}
	for _, w := range f.Contrasts {
		lex.contrasts[analysis.Normalize(w)] = struct{}{}
	}
	return lex, nil
}

// Len returns the number of scored words.
func (l *Lexicon) Len() int { return len(l.valence) }

func (l *Lexicon) isNegation(key string) bool {
	_, ok := l.negations[key]
	return ok
}

func (l *Lexicon) isContrast(key string) bool {
	_, ok := l.contrasts[key]
	return ok
}

// word is a token as written plus its lookup key.
type word struct {
	raw string
	key string
}

func splitWords(text string) []word {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]word, 0, len(fields))
	for _, f := range fields {
		out = append(out, word{raw: f, key: analysis.Normalize(f)})
	}
	return out
}
