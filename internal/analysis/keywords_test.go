package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopKeywords(t *testing.T) {
	e := NewKeywordExtractor()

	got := e.Top([]string{"gato perro gato", "perro gato pajaro"}, 3)
	assert.Equal(t, []KeywordFrequency{
		{Keyword: "gato", Frequency: 3},
		{Keyword: "perro", Frequency: 2},
		{Keyword: "pajaro", Frequency: 1},
	}, got)
}

func TestTopKeywordsCapsVocabulary(t *testing.T) {
	e := NewKeywordExtractor()

	got := e.Top([]string{"uno dos dos tres tres tres cuatro cuatro cuatro cuatro"}, 2)
	assert.Equal(t, []KeywordFrequency{
		{Keyword: "cuatro", Frequency: 4},
		{Keyword: "tres", Frequency: 3},
	}, got)
}

func TestTopKeywordsTiesAreAlphabetical(t *testing.T) {
	e := NewKeywordExtractor()

	got := e.Top([]string{"zorro ardilla", "ardilla zorro buho"}, 3)
	assert.Equal(t, []KeywordFrequency{
		{Keyword: "ardilla", Frequency: 2},
		{Keyword: "zorro", Frequency: 2},
		{Keyword: "buho", Frequency: 1},
	}, got)

	assert.Equal(t, []KeywordFrequency{{Keyword: "alfa", Frequency: 1}}, e.Top([]string{"zeta alfa"}, 1))
	assert.Equal(t, []KeywordFrequency{
		{Keyword: "ardilla", Frequency: 1},
		{Keyword: "buho", Frequency: 1},
		{Keyword: "zorro", Frequency: 1},
	}, e.Top([]string{"zorro ardilla buho"}, 3))
}

func TestTopKeywordsDropsStopwords(t *testing.T) {
	e := NewKeywordExtractor()

	assert.Empty(t, e.Top([]string{"de la que el en y", "Más muy séptimo"}, 10))

	got := e.Top([]string{"El Gobierno y el gobierno de España"}, 10)
	assert.Equal(t, []KeywordFrequency{
		{Keyword: "gobierno", Frequency: 2},
		{Keyword: "espana", Frequency: 1},
	}, got)
}

func TestStopwordsMatchWithoutAccents(t *testing.T) {
	e := NewKeywordExtractor()

	for _, w := range []string{"también", "tambien", "TAMBIÉN", "sí", "si", "más", "mas"} {
		assert.True(t, e.IsStopword(w), w)
	}
	assert.Equal(t, []KeywordFrequency{{Keyword: "ley", Frequency: 1}},
		e.Top([]string{"tambien si ley", "también sí"}, 5))
}

func TestTopKeywordsNormalizesAccents(t *testing.T) {
	e := NewKeywordExtractor()

	got := e.Top([]string{"Economía", "economia", "ECONOMÍA"}, 5)
	assert.Equal(t, []KeywordFrequency{{Keyword: "economia", Frequency: 3}}, got)
}

func TestTopKeywordsEmpty(t *testing.T) {
	e := NewKeywordExtractor()

	assert.Empty(t, e.Top(nil, 10))
	assert.Empty(t, e.Top([]string{"", "   "}, 10))
	assert.Empty(t, e.Top([]string{"gato"}, 0))
}

func TestExtraStopwords(t *testing.T) {
	e := NewKeywordExtractor("Gato")

	assert.True(t, e.IsStopword("gato"))
	assert.True(t, e.IsStopword("séptimo"))
	assert.Equal(t, []KeywordFrequency{{Keyword: "perro", Frequency: 1}}, e.Top([]string{"gato perro"}, 5))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"covid_19", "el", "2024", "precio", "sube"},
		Tokenize("covid_19: el 2024 a precio-sube x"),
	)
}
