package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVader(t *testing.T) {
	v := NewVader()
	ctx := context.Background()

	good, err := v.Polarity(ctx, "A great and wonderful victory")
	require.NoError(t, err)
	assert.Greater(t, good, PositiveThreshold)

	bad, err := v.Polarity(ctx, "A terrible and horrible disaster")
	require.NoError(t, err)
	assert.Less(t, bad, NegativeThreshold)

	flat, err := v.Polarity(ctx, "The committee meets on Tuesday")
	require.NoError(t, err)
	assert.Equal(t, Neutral, Classify(flat))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = v.Polarity(cancelled, "great")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVaderScorer(t *testing.T) {
	lex, err := DefaultLexicon()
	require.NoError(t, err)
	s, err := NewScorer(NewVader(), NewAverage(lex))
	require.NoError(t, err)
	assert.Equal(t, [2]string{"vader", "average"}, s.Signals())

	got, err := s.Score(context.Background(), "What a great and wonderful day")
	require.NoError(t, err)
	assert.Equal(t, Positive, got)
}
