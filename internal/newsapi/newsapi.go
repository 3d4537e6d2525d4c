package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deusflow/newsinsight/internal/cache"
	"github.com/deusflow/newsinsight/internal/errs"
	"github.com/deusflow/newsinsight/internal/news"
	"github.com/deusflow/newsinsight/internal/ratelimit"
	"github.com/deusflow/newsinsight/internal/retry"
	"github.com/deusflow/newsinsight/internal/scraper"
)

const DefaultURL = "https://newsapi.org/v2/everything"

type Options struct {
	APIKey   string
	URL      string
	Language string
	Timeout  time.Duration
	CacheTTL time.Duration
	Retry    retry.RetryConfig
}

// Client fetches articles from the NewsAPI "everything" endpoint.
type Client struct {
	opts       Options
	httpClient *http.Client
	cache      cache.Store
	limiter    *ratelimit.Limiter
	log        *slog.Logger
}

// NewClient builds a NewsAPI source. cache and limiter may be nil.
func NewClient(opts Options, store cache.Store, limiter *ratelimit.Limiter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if store == nil {
		store = cache.Nop{}
	}
	log := logger.With("component", "newsapi")
	if opts.Retry.Logger == nil {
		opts.Retry.Logger = log
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		cache:      store,
		limiter:    limiter,
		log:        log,
	}
}

func (c *Client) Name() string { return "newsapi" }

type response struct {
	Status       string       `json:"status"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
}

type apiArticle struct {
	Source struct {
		ID   *string `json:"id"`
		Name string  `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"publishedAt"`
	Content     *string `json:"content"`
}

// Fetch returns the complete articles NewsAPI has for query. Any failure is
// an errs.KindFetch error.
func (c *Client) Fetch(ctx context.Context, query string) ([]news.Article, error) {
	op := fmt.Sprintf("newsapi query %q", query)

	key := cache.Key("newsapi", query, c.opts.Language)
	body, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", "query", query, "error", err)
	}
	if hit {
		if c.limiter != nil {
			c.limiter.RecordCacheHit(ratelimit.ServiceNewsAPI)
		}
		c.log.Debug("cache hit", "query", query)
	} else {
		body, err = c.download(ctx, query)
		if err != nil {
			return nil, errs.Fetch(op, err)
		}
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.Fetch(op, fmt.Errorf("decode response: %w", err))
	}
	if resp.Status != "ok" {
		msg := resp.Message
		if msg == "" {
			msg = "status " + resp.Status
		}
		return nil, errs.Fetch(op, fmt.Errorf("newsapi: %s", msg))
	}

	if !hit {
		if err := c.cache.Set(ctx, key, body, c.opts.CacheTTL); err != nil {
			c.log.Warn("cache write failed", "query", query, "error", err)
		}
	}

	articles := convert(resp.Articles)
	c.log.Info("newsapi query done", "query", query, "total", resp.TotalResults, "kept", len(articles))
	return articles, nil
}

func (c *Client) download(ctx context.Context, query string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Use(ratelimit.ServiceNewsAPI); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	if c.opts.Language != "" {
		params.Set("language", c.opts.Language)
	}
	params.Set("apiKey", c.opts.APIKey)
	reqURL := c.opts.URL + "?" + params.Encode()

	var body []byte
	err := retry.WithRetry(ctx, c.opts.Retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("User-Agent", "newsinsight/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body = data
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("newsapi returned status %d", resp.StatusCode)
		default:
			// 4xx carries a JSON error payload; let Fetch surface its message.
			body = data
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func convert(in []apiArticle) []news.Article {
	out := make([]news.Article, 0, len(in))
	for _, r := range in {
		a := news.Article{
			Title:       cleanField(r.Title),
			Description: cleanField(r.Description),
			Content:     cleanField(r.Content),
			URL:         r.URL,
			Source:      r.Source.Name,
			Author:      r.Author,
		}
		if !a.Complete() {
			continue
		}
		if t, err := time.Parse(time.RFC3339, r.PublishedAt); err == nil {
			a.PublishedAt = news.Time(t.UTC())
		}
		out = append(out, a)
	}
	return out
}

// cleanField flattens newlines, strips markup and the NewsAPI truncation
// marker. The removal placeholder is passed through so Complete rejects it.
func cleanField(s *string) *string {
	if s == nil {
		return nil
	}
	if *s == news.RemovedPlaceholder {
		return s
	}
	v := strings.ReplaceAll(*s, "\r\n", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	v = scraper.TrimTruncationMarker(scraper.PlainText(v))
	return &v
}
