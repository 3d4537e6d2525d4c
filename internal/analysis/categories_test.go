package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsinsight/internal/errs"
	"github.com/deusflow/newsinsight/internal/news"
)

func mustCategories(t *testing.T, doc string) CategoryMap {
	t.Helper()
	m, err := ParseCategoryMap([]byte(doc))
	require.NoError(t, err)
	return m
}

func TestParseCategoryMapKeepsOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"json", `{"tecnología": ["IA", "software"], "deportes": ["fútbol"], "economía": []}`},
		{"yaml", "tecnología:\n  - IA\n  - software\ndeportes: [fútbol]\neconomía:\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustCategories(t, tt.doc)
			assert.Equal(t, []string{"tecnología", "deportes", "economía"}, m.Names())
			assert.Equal(t, []string{"ia", "software"}, m.Keywords("tecnología"))
			assert.Equal(t, []string{"futbol"}, m.Keywords("deportes"))
			assert.Empty(t, m.Keywords("economía"))
		})
	}
}

func TestParseCategoryMapRejectsMalformed(t *testing.T) {
	docs := map[string]string{
		"empty":          "",
		"list":           `["deportes"]`,
		"scalar value":   `{"deportes": "futbol"}`,
		"blank name":     `{" ": ["a"]}`,
		"duplicate":      "deportes: [a]\ndeportes: [b]\n",
		"nested mapping": "deportes:\n  futbol: 1\n",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCategoryMap([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCategoryMapErrorsAreConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCategoryMap(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"deportes": 3}`), 0o644))
	_, err = LoadCategoryMap(bad)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"deportes": ["futbol"]}`), 0o644))
	m, err := LoadCategoryMap(good)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestCategorize(t *testing.T) {
	c := NewCategorizer(mustCategories(t, `{"deportes":["futbol"],"política":["gobierno"]}`))

	tests := []struct {
		name string
		text string
		want string
	}{
		{"tie goes to first category", "el gobierno habla de futbol", "deportes"},
		{"single hit", "el gobierno aprueba el presupuesto", "política"},
		{"accented input", "El Gobierno anunció medidas", "política"},
		{"substring match", "futbolistas en huelga", "deportes"},
		{"no hits", "el tiempo mañana", news.DefaultCategory},
		{"empty text", "", news.DefaultCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.text))
		})
	}
}

func TestCategorizeHighestCountWins(t *testing.T) {
	c := NewCategorizer(mustCategories(t, `{
		"deportes": ["futbol"],
		"economía": ["inflacion", "banco", "mercado"]
	}`))

	assert.Equal(t, "economía", c.Categorize("futbol, inflación y el banco central"))
	assert.Equal(t, []int{1, 2}, c.Score("futbol, inflación y el banco central"))
}

func TestCategorizeEmptyKeywordListNeverMatches(t *testing.T) {
	c := NewCategorizer(mustCategories(t, `{"vacía": [], "deportes": ["gol"]}`))
	assert.Equal(t, news.DefaultCategory, c.Categorize("nada que ver"))
	assert.Equal(t, "deportes", c.Categorize("un gol"))
}

func TestAssignUsesBatchIndex(t *testing.T) {
	c := NewCategorizer(mustCategories(t, `{"deportes":["futbol"],"política":["gobierno"]}`))
	articles := []news.Article{
		{Title: news.String("Mismo titular"), Content: news.String("partido de futbol")},
		{Title: news.String("Mismo titular"), Content: news.String("el gobierno decide")},
		{Title: news.String("Otro"), Description: news.String("lluvias")},
	}

	got, err := c.Assign(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, []Assignment{
		{Index: 0, Category: "deportes"},
		{Index: 1, Category: "política"},
		{Index: 2, Category: news.DefaultCategory},
	}, got)

	applied := Apply(articles, got)
	assert.Equal(t, "deportes", applied[0].Category)
	assert.Equal(t, "política", applied[1].Category)
	assert.Equal(t, news.DefaultCategory, applied[2].Category)
	assert.Empty(t, articles[0].Category, "input must not be mutated")
}

func TestAssignDeterministic(t *testing.T) {
	c := NewCategorizer(mustCategories(t, `{"a":["x"],"b":["x"]}`))
	articles := []news.Article{{Title: news.String("x x x")}}

	first, err := c.Assign(context.Background(), articles)
	require.NoError(t, err)
	second, err := c.Assign(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "a", first[0].Category)
}

func TestAssignCancelled(t *testing.T) {
	c := NewCategorizer(mustCategories(t, `{"a":["x"]}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Assign(ctx, []news.Article{{Title: news.String("x")}})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindAnalysis))
}
