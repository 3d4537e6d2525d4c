package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	tests := []struct {
		name    string
		article Article
		want    bool
	}{
		{"all present", Article{Title: String("t"), Description: String("d"), Content: String("c")}, true},
		{"missing content", Article{Title: String("t"), Description: String("d")}, false},
		{"removed title", Article{Title: String(RemovedPlaceholder), Description: String("d"), Content: String("c")}, false},
		{"blank description", Article{Title: String("t"), Description: String("  "), Content: String("c")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.article.Complete())
		})
	}
}

func TestTextTreatsNilAsEmpty(t *testing.T) {
	var a Article
	assert.Equal(t, "", a.TitleText())
	assert.Equal(t, "", a.ContentText())
	assert.Equal(t, "", a.DescriptionText())
}

func TestReindex(t *testing.T) {
	in := []Article{{ID: 40, Category: "deportes"}, {ID: 7}}
	out := Reindex(in)

	assert.Equal(t, int64(0), out[0].ID)
	assert.Equal(t, int64(1), out[1].ID)
	assert.Equal(t, "deportes", out[0].Category)
	assert.Equal(t, DefaultCategory, out[1].Category)
	assert.Equal(t, int64(40), in[0].ID, "input must not be mutated")
}

func TestKey(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := Article{Title: String("  Hola Mundo "), PublishedAt: &ts}
	b := Article{Title: String("hola mundo"), PublishedAt: Time(ts)}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), Article{Title: String("hola mundo")}.Key())
}
