package analysis

import (
	"context"
	"strings"

	"github.com/deusflow/newsinsight/internal/errs"
	"github.com/deusflow/newsinsight/internal/news"
)

// Assignment is the category chosen for the article at Index in a batch.
type Assignment struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
}

// Categorizer assigns each article the category whose keywords occur most
// often in its combined text.
type Categorizer struct {
	categories CategoryMap
}

func NewCategorizer(categories CategoryMap) *Categorizer {
	return &Categorizer{categories: categories}
}

func (c *Categorizer) Categories() CategoryMap { return c.categories }

// Score counts, for every category in map order, how many of its keywords
// appear as substrings of the normalized text.
func (c *Categorizer) Score(text string) []int {
	text = Normalize(text)
	scores := make([]int, len(c.categories.names))
	for i, name := range c.categories.names {
		for _, kw := range c.categories.keywords[name] {
			if strings.Contains(text, kw) {
				scores[i]++
			}
		}
	}
	return scores
}

// Categorize returns the best scoring category. Ties go to the category that
// appears first in the map; a text with no hits gets news.DefaultCategory.
func (c *Categorizer) Categorize(text string) string {
	best, bestScore := news.DefaultCategory, 0
	for i, score := range c.Score(text) {
		if score > bestScore {
			best, bestScore = c.categories.names[i], score
		}
	}
	return best
}

// Assign categorizes every article in the batch. The result has one entry per
// article, in input order.
func (c *Categorizer) Assign(ctx context.Context, articles []news.Article) ([]Assignment, error) {
	out := make([]Assignment, len(articles))
	for i, a := range articles {
		if err := ctx.Err(); err != nil {
			return nil, errs.Analysis("categorize", err)
		}
		out[i] = Assignment{Index: i, Category: c.Categorize(CombinedText(a))}
	}
	return out, nil
}

// Apply returns a copy of articles with the assigned categories set.
func Apply(articles []news.Article, assignments []Assignment) []news.Article {
	out := append([]news.Article(nil), articles...)
	for _, as := range assignments {
		if as.Index >= 0 && as.Index < len(out) {
			out[as.Index].Category = as.Category
		}
	}
	return out
}
