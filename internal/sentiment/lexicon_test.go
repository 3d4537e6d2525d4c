package sentiment

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsinsight/internal/errs"
)

const testLexicon = `
words:
  bueno: [2.0, 0.8]
  malo: [-2.0, -0.8]
  éxito: [3.0, 1.0]
boosters:
  muy: 0.3
intensifiers:
  muy: 1.25
negations: ["no"]
contrasts: [pero]
`

func mustLexicon(t *testing.T) *Lexicon {
	t.Helper()
	lex, err := ParseLexicon([]byte(testLexicon))
	require.NoError(t, err)
	return lex
}

func TestDefaultLexicon(t *testing.T) {
	lex, err := DefaultLexicon()
	require.NoError(t, err)
	assert.Greater(t, lex.Len(), 100)
	assert.True(t, lex.isNegation("no"))
	assert.Contains(t, lex.valence, "exito")
}

func TestParseLexiconRejectsBadEntries(t *testing.T) {
	docs := map[string]string{
		"no words":         "boosters: {muy: 0.3}\n",
		"missing polarity": "words: {bueno: [2.0]}\n",
		"valence too big":  "words: {bueno: [5.0, 0.5]}\n",
		"polarity too big": "words: {bueno: [2.0, 1.5]}\n",
		"not yaml":         "words: [",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLexicon([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadLexicon(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errs.Is(err, errs.KindConfig))

	path := filepath.Join(t.TempDir(), "lex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testLexicon), 0o644))
	lex, err := LoadLexicon(path)
	require.NoError(t, err)
	assert.Equal(t, 3, lex.Len())
}

func TestValence(t *testing.T) {
	v := NewValence(mustLexicon(t))
	score := func(text string) float64 {
		s, err := v.Polarity(context.Background(), text)
		require.NoError(t, err)
		return s
	}

	assert.Zero(t, score(""))
	assert.Zero(t, score("nada relevante"))
	assert.InDelta(t, 2/math.Sqrt(19), score("bueno"), 1e-9)
	assert.Greater(t, score("Éxito"), 0.0)
	assert.Less(t, score("malo"), 0.0)

	assert.Greater(t, score("muy bueno"), score("bueno"), "booster")
	assert.Less(t, score("no es bueno"), 0.0, "negation")
	assert.Greater(t, score("BUENO resultado"), score("bueno resultado"), "capitals")
	assert.Greater(t, score("bueno!!"), score("bueno"), "exclamation")
	assert.Less(t, score("bueno pero malo"), 0.0, "contrast")

	for _, text := range []string{"muy muy muy bueno éxito éxito!!!!", "malo malo malo malo malo"} {
		s := score(text)
		assert.LessOrEqual(t, s, 1.0)
		assert.GreaterOrEqual(t, s, -1.0)
	}
}

func TestAverage(t *testing.T) {
	a := NewAverage(mustLexicon(t))
	score := func(text string) float64 {
		s, err := a.Polarity(context.Background(), text)
		require.NoError(t, err)
		return s
	}

	assert.Zero(t, score("nada relevante"))
	assert.InDelta(t, 0.8, score("bueno"), 1e-9)
	assert.InDelta(t, 1.0, score("muy bueno"), 1e-9)
	assert.InDelta(t, -0.4, score("no bueno"), 1e-9)
	assert.InDelta(t, -0.4, score("no es bueno"), 1e-9)
	assert.InDelta(t, 0.0, score("bueno malo"), 1e-9)
	assert.InDelta(t, 0.9, score("bueno éxito"), 1e-9)
}

func TestSignalsHonourCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lex := mustLexicon(t)
	for _, sig := range []Signal{NewValence(lex), NewAverage(lex)} {
		_, err := sig.Polarity(ctx, "bueno")
		assert.ErrorIs(t, err, context.Canceled, sig.Name())
	}
}
