package sentiment

import (
	"context"

	"github.com/jonreiter/govader"
)

// Vader reports the VADER compound score, which already lies in [-1, 1].
// Its lexicon is English, so it suits English-language feeds.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *Vader) Name() string { return "vader" }

func (v *Vader) Polarity(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return v.analyzer.PolarityScores(text).Compound, nil
}
