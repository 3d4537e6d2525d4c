// Package pipeline runs one analytics batch: fetch, categorize, analyze
// categories, sources and sentiments, then write the report. Stages run in
// order over a single in-memory batch and any stage failure discards the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deusflow/newsinsight/internal/analysis"
	"github.com/deusflow/newsinsight/internal/errs"
	"github.com/deusflow/newsinsight/internal/metrics"
	"github.com/deusflow/newsinsight/internal/news"
	"github.com/deusflow/newsinsight/internal/report"
	"github.com/deusflow/newsinsight/internal/sentiment"
	"github.com/deusflow/newsinsight/internal/storage"
)

const (
	DefaultTopKeywords = 10
	DefaultTopTopics   = 5
	DefaultTopSources  = 5
)

type Options struct {
	TopKeywords int
	TopTopics   int
	TopSources  int
}

// Deps are the collaborators of a pipeline. Store and Metrics are optional;
// Writer is only needed by the report stage.
type Deps struct {
	Source      news.Source
	Categorizer *analysis.Categorizer
	Keywords    *analysis.KeywordExtractor
	Scorer      *sentiment.Scorer
	Writer      report.Writer
	Store       storage.Store
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

type Pipeline struct {
	deps Deps
	opts Options
	log  *slog.Logger
}

// New checks the required collaborators and fills option defaults.
func New(deps Deps, opts Options) (*Pipeline, error) {
	switch {
	case deps.Categorizer == nil:
		return nil, errs.Config("pipeline", errors.New("categorizer is required"))
	case deps.Keywords == nil:
		return nil, errs.Config("pipeline", errors.New("keyword extractor is required"))
	case deps.Scorer == nil:
		return nil, errs.Config("pipeline", errors.New("sentiment scorer is required"))
	}
	if opts.TopKeywords <= 0 {
		opts.TopKeywords = DefaultTopKeywords
	}
	if opts.TopTopics <= 0 {
		opts.TopTopics = DefaultTopTopics
	}
	if opts.TopSources <= 0 {
		opts.TopSources = DefaultTopSources
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{deps: deps, opts: opts, log: logger.With("component", "pipeline")}, nil
}

// Options returns the effective options.
func (p *Pipeline) Options() Options { return p.opts }

// CategoryAnalysis is the output of the category stage.
type CategoryAnalysis struct {
	Distribution  analysis.Counts             `json:"category_distribution"`
	PopularTopics []analysis.TopicCount       `json:"popular_topics"`
	TopKeywords   []analysis.KeywordFrequency `json:"top_keywords"`
}

// TitleSentiment is the label given to one article title.
type TitleSentiment struct {
	Title     string          `json:"title"`
	Sentiment sentiment.Label `json:"sentiment"`
}

// SentimentFailure records a title that could not be scored.
type SentimentFailure struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// SentimentAnalysis is the output of the sentiment stage. Counts only covers
// the titles in Titles; failed titles are listed in Failures.
type SentimentAnalysis struct {
	Counts   sentiment.Counts   `json:"sentiments"`
	Titles   []TitleSentiment   `json:"titles"`
	Failures []SentimentFailure `json:"failures,omitempty"`
}

// Result is a completed run.
type Result struct {
	Summary           report.Summary
	Location          string
	Articles          []news.Article
	Sentiments        []TitleSentiment
	SentimentFailures []SentimentFailure
	FetchErrors       []error
}

// Run fetches articles for every query and analyzes them. Failed queries
// contribute no articles and are returned in Result.FetchErrors.
func (p *Pipeline) Run(ctx context.Context, queries []string) (*Result, error) {
	p.deps.Metrics.IncrementRunsStarted()
	start := time.Now()

	articles, fetchErrs, err := p.Fetch(ctx, queries)
	if err != nil {
		return nil, p.fail(err)
	}

	res, err := p.analyze(ctx, articles)
	if err != nil {
		return nil, p.fail(err)
	}
	res.FetchErrors = fetchErrs
	p.succeed(start)
	return res, nil
}

// Analyze runs every stage after fetch over an existing batch.
func (p *Pipeline) Analyze(ctx context.Context, articles []news.Article) (*Result, error) {
	p.deps.Metrics.IncrementRunsStarted()
	start := time.Now()

	res, err := p.analyze(ctx, articles)
	if err != nil {
		return nil, p.fail(err)
	}
	p.succeed(start)
	return res, nil
}

func (p *Pipeline) analyze(ctx context.Context, articles []news.Article) (*Result, error) {
	categorized, err := p.Categorize(ctx, articles)
	if err != nil {
		return nil, err
	}

	cats, err := p.AnalyzeCategories(ctx, categorized)
	if err != nil {
		return nil, err
	}

	sources := p.AnalyzeSources(categorized)

	sents, err := p.AnalyzeSentiments(ctx, categorized)
	if err != nil {
		return nil, err
	}

	summary := report.Summary{
		ResumeArticles:       report.Resumes(categorized),
		TopKeywords:          cats.TopKeywords,
		PopularTopics:        cats.PopularTopics,
		CategoryDistribution: cats.Distribution,
		ActiveSources:        sources,
		Sentiments:           sents.Counts,
	}

	location, err := p.GenerateReport(ctx, summary)
	if err != nil {
		return nil, err
	}

	p.deps.Metrics.AddArticlesProcessed(len(categorized))
	return &Result{
		Summary:           summary,
		Location:          location,
		Articles:          categorized,
		Sentiments:        sents.Titles,
		SentimentFailures: sents.Failures,
	}, nil
}

// Fetch pulls every query from the source and drops repeated articles. Query
// failures are logged and collected; only a storage failure aborts.
func (p *Pipeline) Fetch(ctx context.Context, queries []string) ([]news.Article, []error, error) {
	if p.deps.Source == nil {
		return nil, nil, errs.Config("fetch", errors.New("no article source configured"))
	}

	var (
		articles  []news.Article
		fetchErrs []error
		seen      = make(map[string]struct{})
	)
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, nil, errs.Fetch("fetch", err)
		}

		batch, err := p.deps.Source.Fetch(ctx, q)
		if err != nil {
			if !errs.Is(err, errs.KindFetch) {
				err = errs.Fetch(fmt.Sprintf("%s query %q", p.deps.Source.Name(), q), err)
			}
			p.log.Error("query failed", "source", p.deps.Source.Name(), "query", q, "error", err)
			p.deps.Metrics.IncrementFetchFailures()
			fetchErrs = append(fetchErrs, err)
			continue
		}

		kept := 0
		for _, a := range batch {
			if !a.Complete() {
				continue
			}
			if _, dup := seen[a.Key()]; dup {
				continue
			}
			seen[a.Key()] = struct{}{}
			articles = append(articles, a)
			kept++
		}
		p.log.Info("query fetched", "source", p.deps.Source.Name(), "query", q, "received", len(batch), "kept", kept)
	}
	p.deps.Metrics.AddArticlesFetched(len(articles))

	if p.deps.Store != nil && len(articles) > 0 {
		added, err := p.deps.Store.Save(ctx, articles)
		if err != nil {
			return nil, nil, errs.IO("save articles", err)
		}
		p.log.Info("articles stored", "received", len(articles), "new", added)
	}
	return articles, fetchErrs, nil
}

// Categorize assigns every article its batch index as ID and a category.
// Categories are written back to the store when one is configured.
func (p *Pipeline) Categorize(ctx context.Context, articles []news.Article) ([]news.Article, error) {
	batch := news.Reindex(articles)
	assignments, err := p.deps.Categorizer.Assign(ctx, batch)
	if err != nil {
		return nil, err
	}
	categorized := analysis.Apply(batch, assignments)
	for _, a := range categorized {
		p.deps.Metrics.RecordCategory(a.Category)
	}

	if p.deps.Store != nil && len(categorized) > 0 {
		if err := p.deps.Store.SetCategories(ctx, categorized); err != nil {
			return nil, errs.IO("store categories", err)
		}
	}
	p.log.Info("articles categorized", "articles", len(categorized))
	return categorized, nil
}

// AnalyzeCategories computes the category distribution, the most popular
// topics and the top keywords of the batch.
func (p *Pipeline) AnalyzeCategories(ctx context.Context, articles []news.Article) (CategoryAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return CategoryAnalysis{}, errs.Analysis("analyze categories", err)
	}

	dist := analysis.CategoryDistribution(articles)
	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = analysis.CombinedText(a)
	}

	res := CategoryAnalysis{
		Distribution:  dist,
		PopularTopics: analysis.PopularTopics(dist, p.opts.TopTopics),
		TopKeywords:   p.deps.Keywords.Top(texts, p.opts.TopKeywords),
	}
	p.log.Debug("categories analyzed", "categories", dist.Len(), "keywords", len(res.TopKeywords))
	return res, nil
}

// AnalyzeSources returns the most active sources of the batch.
func (p *Pipeline) AnalyzeSources(articles []news.Article) analysis.Counts {
	return analysis.PublicationFrequency(articles, p.opts.TopSources)
}

// AnalyzeSentiments labels every title. A title that fails to score is
// logged and left out of the counts; cancellation aborts the stage.
func (p *Pipeline) AnalyzeSentiments(ctx context.Context, articles []news.Article) (SentimentAnalysis, error) {
	res := SentimentAnalysis{Titles: make([]TitleSentiment, 0, len(articles))}
	for i, a := range articles {
		if err := ctx.Err(); err != nil {
			return SentimentAnalysis{}, errs.Analysis("analyze sentiments", err)
		}

		title := a.TitleText()
		label, err := p.deps.Scorer.Score(ctx, title)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return SentimentAnalysis{}, errs.Analysis("analyze sentiments", ctxErr)
			}
			p.log.Warn("sentiment failed", "index", i, "title", title, "error", err)
			p.deps.Metrics.IncrementSentimentFailures()
			res.Failures = append(res.Failures, SentimentFailure{Index: i, Title: title, Error: err.Error()})
			continue
		}
		if err := res.Counts.Add(label); err != nil {
			return SentimentAnalysis{}, errs.Analysis("analyze sentiments", err)
		}
		p.deps.Metrics.IncrementSentimentScored()
		res.Titles = append(res.Titles, TitleSentiment{Title: title, Sentiment: label})
	}

	p.log.Info("sentiments analyzed",
		"positive", res.Counts.Positive,
		"neutral", res.Counts.Neutral,
		"negative", res.Counts.Negative,
		"failed", len(res.Failures),
	)
	return res, nil
}

// GenerateReport writes the summary and returns its location.
func (p *Pipeline) GenerateReport(ctx context.Context, summary report.Summary) (string, error) {
	if p.deps.Writer == nil {
		return "", errs.Config("generate report", errors.New("no report writer configured"))
	}
	location, err := p.deps.Writer.Write(ctx, summary)
	if err != nil {
		if errs.KindOf(err) == errs.KindUnknown {
			err = errs.IO("generate report", err)
		}
		return "", err
	}
	p.deps.Metrics.IncrementReportsWritten()
	p.log.Info("report written", "location", location)
	return location, nil
}

func (p *Pipeline) fail(err error) error {
	p.deps.Metrics.IncrementRunsFailed()
	p.deps.Metrics.SetError(err.Error())
	p.log.Error("run failed", "kind", errs.KindOf(err), "error", err)
	return err
}

func (p *Pipeline) succeed(start time.Time) {
	elapsed := time.Since(start)
	p.deps.Metrics.IncrementRunsCompleted()
	p.deps.Metrics.SetLastRun()
	p.deps.Metrics.RecordProcessingTime(elapsed)
	p.log.Info("run completed", "duration", elapsed)
}
