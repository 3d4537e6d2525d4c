// Package app wires configuration into a ready pipeline and HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/deusflow/newsinsight/internal/analysis"
	"github.com/deusflow/newsinsight/internal/api"
	"github.com/deusflow/newsinsight/internal/cache"
	"github.com/deusflow/newsinsight/internal/config"
	"github.com/deusflow/newsinsight/internal/errs"
	"github.com/deusflow/newsinsight/internal/gemini"
	"github.com/deusflow/newsinsight/internal/metrics"
	"github.com/deusflow/newsinsight/internal/news"
	"github.com/deusflow/newsinsight/internal/newsapi"
	"github.com/deusflow/newsinsight/internal/pipeline"
	"github.com/deusflow/newsinsight/internal/ratelimit"
	"github.com/deusflow/newsinsight/internal/report"
	"github.com/deusflow/newsinsight/internal/retry"
	"github.com/deusflow/newsinsight/internal/rss"
	"github.com/deusflow/newsinsight/internal/scraper"
	"github.com/deusflow/newsinsight/internal/sentiment"
	"github.com/deusflow/newsinsight/internal/storage"
	"github.com/deusflow/newsinsight/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config   *config.Config
	Pipeline *pipeline.Pipeline
	Store    storage.Store
	Metrics  *metrics.Metrics
	Limiter  *ratelimit.Limiter

	base    *slog.Logger
	log     *slog.Logger
	closers []func() error
}

// Build creates every component named by cfg. On failure, whatever was
// already opened is closed again.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Config:  cfg,
		Metrics: metrics.New(),
		base:    logger,
		log:     logger.With("component", "app"),
	}
	if err := a.build(ctx, logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, logger *slog.Logger) error {
	cfg := a.Config
	a.Limiter = ratelimit.New(map[string]int{
		ratelimit.ServiceNewsAPI: cfg.MaxNewsRequests,
		ratelimit.ServiceGemini:  cfg.MaxGeminiRequests,
	}, 0, logger)

	categories, err := analysis.LoadCategoryMap(cfg.CategoriesPath)
	if err != nil {
		return err
	}
	a.log.Info("categories loaded", "path", cfg.CategoriesPath, "categories", categories.Len())

	scorer, err := a.buildScorer(ctx, logger)
	if err != nil {
		return err
	}
	if err := a.buildStore(ctx, logger); err != nil {
		return err
	}
	store, err := a.buildCache(ctx)
	if err != nil {
		return err
	}
	source, err := a.buildSource(store, logger)
	if err != nil {
		return err
	}
	writer, err := a.buildWriter(ctx, logger)
	if err != nil {
		return err
	}

	a.Pipeline, err = pipeline.New(pipeline.Deps{
		Source:      source,
		Categorizer: analysis.NewCategorizer(categories),
		Keywords:    analysis.NewKeywordExtractor(),
		Scorer:      scorer,
		Writer:      writer,
		Store:       a.Store,
		Metrics:     a.Metrics,
		Logger:      logger,
	}, pipeline.Options{
		TopKeywords: cfg.TopKeywords,
		TopTopics:   cfg.TopTopics,
		TopSources:  cfg.TopSources,
	})
	return err
}

func (a *App) buildScorer(ctx context.Context, logger *slog.Logger) (*sentiment.Scorer, error) {
	var (
		lex *sentiment.Lexicon
		err error
	)
	if a.Config.LexiconPath != "" {
		lex, err = sentiment.LoadLexicon(a.Config.LexiconPath)
	} else {
		lex, err = sentiment.DefaultLexicon()
	}
	if err != nil {
		return nil, err
	}

	switch a.Config.SentimentSignal {
	case config.SignalGemini:
		client, err := gemini.NewClient(ctx, a.Config.GeminiAPIKey, a.Config.GeminiModel, a.Limiter, logger)
		if err != nil {
			return nil, errs.Config("sentiment", err)
		}
		a.closers = append(a.closers, func() error { client.Close(); return nil })
		return sentiment.NewScorer(client, sentiment.NewValence(lex))
	case config.SignalVader:
		return sentiment.NewScorer(sentiment.NewVader(), sentiment.NewAverage(lex))
	default:
		return sentiment.NewScorer(sentiment.NewValence(lex), sentiment.NewAverage(lex))
	}
}

func (a *App) buildStore(ctx context.Context, logger *slog.Logger) error {
	switch a.Config.StorageBackend {
	case config.BackendFile:
		fs, err := storage.OpenFileStore(a.Config.ArticleStorePath)
		if err != nil {
			return errs.IO("open article store", err)
		}
		a.Store = fs
	case config.BackendPostgres:
		ps, err := storage.NewPostgresStore(ctx, a.Config.DatabaseURL, logger)
		if err != nil {
			return errs.IO("open article store", err)
		}
		a.Store = ps
	default:
		return nil
	}
	a.closers = append(a.closers, a.Store.Close)
	a.log.Info("article storage ready", "backend", a.Config.StorageBackend)
	return nil
}

func (a *App) buildCache(ctx context.Context) (cache.Store, error) {
	var store cache.Store
	switch a.Config.CacheBackend {
	case config.BackendMemory:
		store = cache.New()
	case config.BackendRedis:
		r, err := cache.NewRedis(ctx, a.Config.RedisURL)
		if err != nil {
			return nil, errs.Config("cache", err)
		}
		store = r
	default:
		return cache.Nop{}, nil
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *App) buildSource(store cache.Store, logger *slog.Logger) (news.Source, error) {
	cfg := a.Config
	switch cfg.ArticleSource {
	case config.SourceRSS:
		feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
		if err != nil {
			return nil, errs.Config("load feeds", err)
		}
		return rss.NewSource(feeds, scraper.NewExtractor(cfg.RequestTimeout, logger), logger), nil
	case config.SourceStore:
		if a.Store == nil {
			return nil, errs.Config("source", errors.New("store source needs a storage backend"))
		}
		return storage.Source{Store: a.Store}, nil
	default:
		return newsapi.NewClient(newsapi.Options{
			APIKey:   cfg.NewsAPIKey,
			URL:      cfg.NewsAPIURL,
			Language: cfg.NewsLanguage,
			Timeout:  cfg.RequestTimeout,
			CacheTTL: cfg.CacheTTL,
			Retry: retry.RetryConfig{
				MaxAttempts: cfg.RetryAttempts,
				Delay:       cfg.RetryDelay,
				Backoff:     true,
			},
		}, store, a.Limiter, logger), nil
	}
}

func (a *App) buildWriter(ctx context.Context, logger *slog.Logger) (report.Writer, error) {
	var writers report.MultiWriter
	if a.Config.ReportDir != "" {
		writers = append(writers, report.NewFileWriter(a.Config.ReportDir, logger))
	}
	if a.Config.S3Bucket != "" {
		w, err := report.NewS3Writer(ctx, report.S3Config{
			Bucket:       a.Config.S3Bucket,
			Prefix:       a.Config.S3Prefix,
			Region:       a.Config.S3Region,
			Profile:      a.Config.S3Profile,
			UsePathStyle: a.Config.S3UsePathStyle,
		}, logger)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	if len(writers) == 0 {
		return nil, errs.Config("report", errors.New("no report destination configured"))
	}
	if a.Config.TelegramToken != "" {
		writers = append(writers, telegram.NewNotifier(a.Config.TelegramToken, a.Config.TelegramChatID, retry.RetryConfig{
			MaxAttempts: a.Config.RetryAttempts,
			Delay:       a.Config.RetryDelay,
			Backoff:     true,
		}, logger))
	}

	if len(writers) == 1 {
		return writers[0], nil
	}
	return writers, nil
}

// Run executes one batch over queries, or the configured queries when none
// are given.
func (a *App) Run(ctx context.Context, queries []string) (*pipeline.Result, error) {
	if len(queries) == 0 {
		queries = a.Config.NewsQueries
	}
	a.log.Info("starting run", "source", a.Config.ArticleSource, "queries", queries)
	return a.Pipeline.Run(ctx, queries)
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	srv := api.NewServer(a.Pipeline, a.Store, a.Metrics, a.Limiter, api.Options{
		DefaultQueries: a.Config.NewsQueries,
		AllowedOrigins: a.Config.CORSOrigins,
	}, a.base)
	return srv.Router()
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.Config.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.log.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

// Close releases storage, cache and client connections in reverse order.
func (a *App) Close() error {
	var errList []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	a.closers = nil
	return errors.Join(errList...)
}
