package storage

import (
	"context"
	"strings"

	"github.com/deusflow/newsinsight/internal/analysis"
	"github.com/deusflow/newsinsight/internal/news"
)

// Store persists articles. Articles are identified by title plus
// publication time (news.Article.Key); saving an existing article updates
// its fields but keeps its stored category.
type Store interface {
	// Save upserts articles and returns how many were new.
	Save(ctx context.Context, articles []news.Article) (int, error)
	// List returns all stored articles in insertion order with their stored IDs.
	List(ctx context.Context) ([]news.Article, error)
	// SetCategories stores the category of each given article.
	SetCategories(ctx context.Context, articles []news.Article) error
	// GetStats reports the article total and per-category counts.
	GetStats(ctx context.Context) (map[string]int, error)
	Close() error
}

// Source exposes a Store as a news.Source. A non-empty query keeps only
// articles whose title or description contains it.
type Source struct {
	Store Store
}

func (s Source) Name() string { return "store" }

func (s Source) Fetch(ctx context.Context, query string) ([]news.Article, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := analysis.Normalize(strings.TrimSpace(query))
	if needle == "" {
		return all, nil
	}

	var out []news.Article
	for _, a := range all {
		if strings.Contains(analysis.Normalize(a.TitleText()+" "+a.DescriptionText()), needle) {
			out = append(out, a)
		}
	}
	return out, nil
}
