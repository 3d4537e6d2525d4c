package rss

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsinsight/internal/analysis"
	"github.com/deusflow/newsinsight/internal/news"
	"github.com/deusflow/newsinsight/internal/scraper"
)

// FeedsConfig is YAML config structure
// feeds:
//   - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads RSS feeds list from YAML file
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("%s lists no feeds", path)
	}
	return cfg.Feeds, nil
}

// Source serves articles from a fixed list of RSS/Atom feeds. The query
// filters items by title and description.
type Source struct {
	feeds     []string
	parser    *gofeed.Parser
	extractor *scraper.Extractor
	log       *slog.Logger
}

// NewSource builds a feed source. extractor is optional; when set, items
// without body text get it from the linked page.
func NewSource(feeds []string, extractor *scraper.Extractor, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		feeds:     feeds,
		parser:    gofeed.NewParser(),
		extractor: extractor,
		log:       logger.With("component", "rss"),
	}
}

func (s *Source) Name() string { return "rss" }

// Fetch downloads all feeds and returns the complete items matching query.
// It fails only when every feed fails.
func (s *Source) Fetch(ctx context.Context, query string) ([]news.Article, error) {
	items, err := s.fetchAllFeeds(ctx)
	if err != nil {
		return nil, err
	}

	needle := analysis.Normalize(strings.TrimSpace(query))
	var out []news.Article
	for _, it := range items {
		a := s.toArticle(ctx, it)
		if !a.Complete() {
			continue
		}
		if needle != "" && !strings.Contains(analysis.Normalize(a.TitleText()+" "+a.DescriptionText()), needle) {
			continue
		}
		out = append(out, a)
	}

	s.log.Info("rss query done", "query", query, "items", len(items), "matched", len(out))
	return out, nil
}

type feedItem struct {
	*gofeed.Item
	feedTitle string
}

// fetchAllFeeds downloads and parses all feeds
func (s *Source) fetchAllFeeds(ctx context.Context) ([]feedItem, error) {
	var all []feedItem
	successCount := 0
	var lastErr error

	for _, url := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			s.log.Warn("error parsing feed", "url", url, "error", err)
			lastErr = err
			continue // Log error, but don't stop
		}
		for _, it := range feed.Items {
			all = append(all, feedItem{Item: it, feedTitle: feed.Title})
		}
		successCount++
		s.log.Debug("feed loaded", "url", url, "items", len(feed.Items))
	}

	if successCount == 0 && len(s.feeds) > 0 {
		return nil, fmt.Errorf("all %d feeds failed, last error: %w", len(s.feeds), lastErr)
	}
	return all, nil
}

func (s *Source) toArticle(ctx context.Context, it feedItem) news.Article {
	a := news.Article{
		URL:    it.Link,
		Source: it.feedTitle,
	}
	if title := scraper.PlainText(it.Title); title != "" {
		a.Title = news.String(title)
	}
	if desc := scraper.PlainText(it.Description); desc != "" {
		a.Description = news.String(desc)
	}

	content := scraper.PlainText(it.Content)
	if content == "" && s.extractor != nil && it.Link != "" {
		full, err := s.extractor.ExtractFullArticle(ctx, it.Link)
		if err != nil {
			s.log.Debug("could not extract article", "url", it.Link, "error", err)
		} else {
			content = full.Content
		}
	}
	if content == "" && a.Description != nil {
		content = *a.Description
	}
	if content != "" {
		a.Content = news.String(content)
	}

	if it.PublishedParsed != nil {
		a.PublishedAt = news.Time(it.PublishedParsed.UTC())
	} else if it.UpdatedParsed != nil {
		a.PublishedAt = news.Time(it.UpdatedParsed.UTC())
	}
	if it.Author != nil && it.Author.Name != "" {
		a.Author = news.String(it.Author.Name)
	}
	if a.Source == "" {
		a.Source = "rss"
	}
	return a
}
