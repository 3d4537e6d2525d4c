package news

import (
	"context"
	"strings"
	"time"
)

// DefaultCategory is assigned to articles that match no configured keyword.
const DefaultCategory = "otros"

// RemovedPlaceholder is what the upstream API returns for withdrawn fields.
const RemovedPlaceholder = "[Removed]"

// Article is a normalized news record. Optional text fields are nil when the
// upstream record did not carry them.
type Article struct {
	ID          int64      `json:"id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Content     *string    `json:"content"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at"`
	Author      *string    `json:"author,omitempty"`
	Category    string     `json:"category"`
}

// Source produces articles for a query. Implementations own retries and caching.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]Article, error)
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Time returns a pointer to t.
func Time(t time.Time) *time.Time { return &t }

// Text dereferences an optional field, treating nil as empty.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (a Article) TitleText() string       { return Text(a.Title) }
func (a Article) DescriptionText() string { return Text(a.Description) }
func (a Article) ContentText() string     { return Text(a.Content) }

// Complete reports whether title, description and content are all present and
// not the upstream removal placeholder.
func (a Article) Complete() bool {
	for _, f := range []*string{a.Title, a.Description, a.Content} {
		if f == nil || strings.TrimSpace(*f) == "" || *f == RemovedPlaceholder {
			return false
		}
	}
	return true
}

// Key identifies an article the way storage deduplicates it: title plus
// publication time.
func (a Article) Key() string {
	ts := ""
	if a.PublishedAt != nil {
		ts = a.PublishedAt.UTC().Format(time.RFC3339)
	}
	return strings.ToLower(strings.TrimSpace(a.TitleText())) + "|" + ts
}

// Reindex assigns batch row indexes as IDs and fills empty categories with the
// default. It returns a copy; the input slice is left untouched.
func Reindex(articles []Article) []Article {
	out := make([]Article, len(articles))
	for i, a := range articles {
		a.ID = int64(i)
		if a.Category == "" {
			a.Category = DefaultCategory
		}
		out[i] = a
	}
	return out
}
