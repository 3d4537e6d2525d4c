package sentiment

import (
	"context"
	"math"
)

// negationFactor flips and dampens a negated word's polarity.
const negationFactor = -0.5

// Average scores text as the mean polarity of its scored words,
// with intensifiers multiplying the following word and negations within two
// words flipping it.
type Average struct {
	lex *Lexicon
}

func NewAverage(lex *Lexicon) *Average {
	return &Average{lex: lex}
}

func (p *Average) Name() string { return "average" }

func (p *Average) Polarity(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	words := splitWords(text)

	sum, n := 0.0, 0
	for i, w := range words {
		score, ok := p.lex.polarity[w.key]
		if !ok {
			continue
		}
		if i > 0 {
			if m, ok := p.lex.intensifiers[words[i-1].key]; ok {
				score *= m
			}
		}
		for d := 1; d <= 2 && i-d >= 0; d++ {
			if p.lex.isNegation(words[i-d].key) {
				score *= negationFactor
				break
			}
		}
		sum += score
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return math.Max(-1, math.Min(1, sum/float64(n))), nil
}
