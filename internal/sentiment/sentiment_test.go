package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsinsight/internal/errs"
)

type fakeSignal struct {
	name  string
	score float64
	err   error
	calls int
}

func (f *fakeSignal) Name() string { return f.name }

func (f *fakeSignal) Polarity(context.Context, string) (float64, error) {
	f.calls++
	return f.score, f.err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Label
	}{
		{1, Positive},
		{0.05, Positive},
		{0.049, Neutral},
		{0, Neutral},
		{-0.049, Neutral},
		{-0.05, Negative},
		{-1, Negative},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestScorerAveragesSignals(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want Label
	}{
		{"both positive", 0.6, 0.4, Positive},
		{"cancel out", 0.5, -0.5, Neutral},
		{"one strong negative", -0.3, 0.1, Negative},
		{"weak agreement", 0.04, 0.04, Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScorer(&fakeSignal{name: "a", score: tt.a}, &fakeSignal{name: "b", score: tt.b})
			require.NoError(t, err)

			got, err := s.Score(context.Background(), "titular")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScorerFailsWhenEitherSignalFails(t *testing.T) {
	boom := errors.New("boom")

	t.Run("first", func(t *testing.T) {
		b := &fakeSignal{name: "b", score: 1}
		s, err := NewScorer(&fakeSignal{name: "a", err: boom}, b)
		require.NoError(t, err)

		_, err = s.Score(context.Background(), "x")
		require.ErrorIs(t, err, boom)
		assert.True(t, errs.Is(err, errs.KindAnalysis))
		assert.Zero(t, b.calls)
	})

	t.Run("second", func(t *testing.T) {
		s, err := NewScorer(&fakeSignal{name: "a", score: 1}, &fakeSignal{name: "b", err: boom})
		require.NoError(t, err)

		_, err = s.Score(context.Background(), "x")
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "sentiment b")
	})

	t.Run("out of range", func(t *testing.T) {
		s, err := NewScorer(&fakeSignal{name: "a", score: 2}, &fakeSignal{name: "b"})
		require.NoError(t, err)

		_, err = s.Score(context.Background(), "x")
		assert.True(t, errs.Is(err, errs.KindAnalysis))
	})
}

func TestNewScorerRequiresTwoSignals(t *testing.T) {
	_, err := NewScorer(&fakeSignal{name: "a"}, nil)
	assert.True(t, errs.Is(err, errs.KindConfig))
}

func TestCounts(t *testing.T) {
	var c Counts
	for _, l := range []Label{Positive, Negative, Neutral, Positive} {
		require.NoError(t, c.Add(l))
	}
	assert.Error(t, c.Add(Label("mixto")))

	assert.Equal(t, Counts{Positive: 2, Neutral: 1, Negative: 1}, c)
	assert.Equal(t, 4, c.Total())
}

func TestLexiconScorer(t *testing.T) {
	lex, err := DefaultLexicon()
	require.NoError(t, err)
	s, err := NewScorer(NewValence(lex), NewAverage(lex))
	require.NoError(t, err)
	assert.Equal(t, [2]string{"valence", "average"}, s.Signals())

	tests := []struct {
		title string
		want  Label
	}{
		{"Gran éxito de la selección en el Mundial", Positive},
		{"Tragedia y crisis tras el terremoto", Negative},
		{"El gobierno se reúne el martes", Neutral},
		{"La reforma no es buena", Negative},
		{"", Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, err := s.Score(context.Background(), tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
