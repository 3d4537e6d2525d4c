// Package report defines the summary artifact produced by an analytics run
// and the sinks it can be written to.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/deusflow/newsinsight/internal/analysis"
	"github.com/deusflow/newsinsight/internal/news"
	"github.com/deusflow/newsinsight/internal/sentiment"
)

const (
	// ArtifactSuffix ends every generated report name.
	ArtifactSuffix = "_data_summary.json"
	// DownloadName is the file name offered to HTTP clients.
	DownloadName = "data_summary.json"
	idLen        = 5
)

// ArticleResume is the per-article entry of a report. The "resumme" key is
// part of the published format.
type ArticleResume struct {
	Title  string `json:"title"`
	Resume string `json:"resumme"`
	URL    string `json:"url"`
}

// Summary is the report artifact of one pipeline run.
type Summary struct {
	ResumeArticles       []ArticleResume             `json:"resume_articles"`
	TopKeywords          []analysis.KeywordFrequency `json:"top_keywords"`
	PopularTopics        []analysis.TopicCount       `json:"popular_topics"`
	CategoryDistribution analysis.Counts             `json:"category_distribution"`
	ActiveSources        analysis.Counts             `json:"active_sources"`
	Sentiments           sentiment.Counts            `json:"sentiments"`
}

// Resumes builds the title/description/url listing of a batch.
func Resumes(articles []news.Article) []ArticleResume {
	out := make([]ArticleResume, len(articles))
	for i, a := range articles {
		out[i] = ArticleResume{Title: a.TitleText(), Resume: a.DescriptionText(), URL: a.URL}
	}
	return out
}

// Encode writes s as indented JSON without HTML escaping.
func (s Summary) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Bytes returns the encoded summary.
func (s Summary) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a summary previously written by Encode.
func Decode(r io.Reader) (Summary, error) {
	var s Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Summary{}, fmt.Errorf("decode report: %w", err)
	}
	return s, nil
}

// Writer persists a summary and returns where it ended up.
type Writer interface {
	Write(ctx context.Context, s Summary) (string, error)
}

// NewArtifactName returns a fresh "<id>_data_summary.json" name.
func NewArtifactName() string {
	return uuid.NewString()[:idLen] + ArtifactSuffix
}

// MultiWriter writes to every writer in order and returns the locations
// joined by ", ". It stops at the first failure.
type MultiWriter []Writer

func (m MultiWriter) Write(ctx context.Context, s Summary) (string, error) {
	locations := make([]string, 0, len(m))
	for _, w := range m {
		loc, err := w.Write(ctx, s)
		if err != nil {
			return "", err
		}
		locations = append(locations, loc)
	}
	return strings.Join(locations, ", "), nil
}
