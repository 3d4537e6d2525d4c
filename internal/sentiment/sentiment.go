// Package sentiment labels article titles as positive, negative or neutral by
// averaging two independent polarity signals.
package sentiment

import (
	"context"
	"fmt"
	"math"

	"github.com/deusflow/newsinsight/internal/errs"
)

// Label is the tri-class outcome for one title.
type Label string

const (
	Positive Label = "positivo"
	Negative Label = "negativo"
	Neutral  Label = "neutral"
)

// Classification thresholds on the combined score.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Signal computes a polarity score in [-1, 1] for a piece of text.
type Signal interface {
	Name() string
	Polarity(ctx context.Context, text string) (float64, error)
}

// Scorer combines two signals into a Label.
type Scorer struct {
	a, b Signal
}

// NewScorer builds a scorer from two signals. Neither may be nil.
func NewScorer(a, b Signal) (*Scorer, error) {
	if a == nil || b == nil {
		return nil, errs.Config("new sentiment scorer", fmt.Errorf("two signals are required"))
	}
	return &Scorer{a: a, b: b}, nil
}

// Signals returns the names of the two configured signals.
func (s *Scorer) Signals() [2]string {
	return [2]string{s.a.Name(), s.b.Name()}
}

// Combined returns the mean of both signal scores. A failure of either signal
// fails the whole call.
func (s *Scorer) Combined(ctx context.Context, title string) (float64, error) {
	a, err := polarity(ctx, s.a, title)
	if err != nil {
		return 0, err
	}
	b, err := polarity(ctx, s.b, title)
	if err != nil {
		return 0, err
	}
	return (a + b) / 2, nil
}

// Score labels a title.
func (s *Scorer) Score(ctx context.Context, title string) (Label, error) {
	combined, err := s.Combined(ctx, title)
	if err != nil {
		return "", err
	}
	return Classify(combined), nil
}

func polarity(ctx context.Context, sig Signal, text string) (float64, error) {
	v, err := sig.Polarity(ctx, text)
	if err != nil {
		return 0, errs.Analysis("sentiment "+sig.Name(), err)
	}
	if math.IsNaN(v) || v < -1 || v > 1 {
		return 0, errs.Analysis("sentiment "+sig.Name(), fmt.Errorf("polarity %v out of range [-1, 1]", v))
	}
	return v, nil
}

// Classify maps a combined score to a Label.
func Classify(combined float64) Label {
	switch {
	case combined >= PositiveThreshold:
		return Positive
	case combined <= NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// Counts tallies labels of successfully scored titles.
type Counts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Add counts one label. Unknown labels are rejected rather than counted as
// neutral.
func (c *Counts) Add(l Label) error {
	switch l {
	case Positive:
		c.Positive++
	case Neutral:
		c.Neutral++
	case Negative:
		c.Negative++
	default:
		return fmt.Errorf("unknown sentiment label %q", l)
	}
	return nil
}

func (c Counts) Total() int { return c.Positive + c.Neutral + c.Negative }
