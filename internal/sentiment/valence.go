package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// Valence tuning constants.
const (
	capsIncrement    = 0.733
	negationScalar   = -0.74
	exclamationIncr  = 0.292
	maxExclamations  = 4
	questionIncr     = 0.18
	questionMaxBoost = 0.96
	normalizeAlpha   = 15.0
	beforeContrast   = 0.5
	afterContrast    = 1.5
)

// boosterDecay scales a booster by its distance to the modified word.
var boosterDecay = [3]float64{1, 0.95, 0.9}

// Valence is a rule-based signal: it sums word valences adjusted for nearby
// boosters, negations, capitalization, contrast words and punctuation, then
// squashes the sum into [-1, 1].
type Valence struct {
	lex *Lexicon
}

func NewValence(lex *Lexicon) *Valence {
	return &Valence{lex: lex}
}

func (v *Valence) Name() string { return "valence" }

func (v *Valence) Polarity(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	words := splitWords(text)
	if len(words) == 0 {
		return 0, nil
	}

	emphasis := mixedCase(words)
	contrastAt := -1
	scores := make([]float64, len(words))

	for i, w := range words {
		if contrastAt < 0 && v.lex.isContrast(w.key) {
			contrastAt = i
		}
		val, ok := v.lex.valence[w.key]
		if !ok || val == 0 {
			continue
		}
		if emphasis && isUpper(w.raw) {
			val += sign(val) * capsIncrement
		}

		negated := false
		for d := 1; d <= 3 && i-d >= 0; d++ {
			prev := words[i-d]
			if b, ok := v.lex.boosters[prev.key]; ok {
				scalar := b
				if emphasis && isUpper(prev.raw) {
					scalar += sign(b) * capsIncrement
				}
				val += sign(val) * scalar * boosterDecay[d-1]
			}
			if v.lex.isNegation(prev.key) {
				negated = true
			}
		}
		if negated {
			val *= negationScalar
		}
		scores[i] = val
	}

	if contrastAt >= 0 {
		for i := range scores {
			switch {
			case i < contrastAt:
				scores[i] *= beforeContrast
			case i > contrastAt:
				scores[i] *= afterContrast
			}
		}
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if sum == 0 {
		return 0, nil
	}
	sum += sign(sum) * punctuationEmphasis(text)

	compound := sum / math.Sqrt(sum*sum+normalizeAlpha)
	return math.Max(-1, math.Min(1, compound)), nil
}

func punctuationEmphasis(text string) float64 {
	ex := strings.Count(text, "!")
	if ex > maxExclamations {
		ex = maxExclamations
	}
	emphasis := float64(ex) * exclamationIncr

	if q := strings.Count(text, "?"); q > 1 {
		if q <= 3 {
			emphasis += float64(q) * questionIncr
		} else {
			emphasis += questionMaxBoost
		}
	}
	return emphasis
}

// mixedCase reports whether some, but not all, words are written in capitals.
func mixedCase(words []word) bool {
	upper := 0
	for _, w := range words {
		if isUpper(w.raw) {
			upper++
		}
	}
	return upper > 0 && upper < len(words)
}

func isUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}
