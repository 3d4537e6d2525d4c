package newsapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsinsight/internal/cache"
	"github.com/deusflow/newsinsight/internal/errs"
	"github.com/deusflow/newsinsight/internal/ratelimit"
	"github.com/deusflow/newsinsight/internal/retry"
)

const okPayload = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {
      "source": {"id": null, "name": "El País"},
      "author": "Ana",
      "title": "El Senado aprueba la reforma",
      "description": "La cámara alta\nvota hoy",
      "url": "https://example.com/a",
      "publishedAt": "2024-05-01T10:00:00Z",
      "content": "<p>Texto de la <b>reforma</b></p>… [+1234 chars]"
    },
    {
      "source": {"id": null, "name": "X"},
      "title": "[Removed]",
      "description": "[Removed]",
      "url": "https://removed.com",
      "publishedAt": "2024-05-01T11:00:00Z",
      "content": "[Removed]"
    },
    {
      "source": {"id": null, "name": "Y"},
      "title": "Sin contenido",
      "description": "desc",
      "url": "https://example.com/c",
      "publishedAt": "2024-05-01T12:00:00Z",
      "content": null
    }
  ]
}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(url string, store cache.Store, limiter *ratelimit.Limiter) *Client {
	return NewClient(Options{
		APIKey:   "secret",
		URL:      url,
		Language: "es",
		CacheTTL: time.Minute,
		Retry:    retry.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond},
	}, store, limiter, quietLogger())
}

func TestFetchConvertsAndFilters(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, okPayload)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil, nil)
	articles, err := c.Fetch(context.Background(), "senado")
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "senado", q.Get("q"))
	assert.Equal(t, "publishedAt", q.Get("sortBy"))
	assert.Equal(t, "es", q.Get("language"))
	assert.Equal(t, "secret", q.Get("apiKey"))

	require.Len(t, articles, 1)
	a := articles[0]
	assert.Equal(t, "El Senado aprueba la reforma", a.TitleText())
	assert.Equal(t, "La cámara alta vota hoy", a.DescriptionText())
	assert.Equal(t, "Texto de la reforma", a.ContentText())
	assert.Equal(t, "El País", a.Source)
	assert.Equal(t, "https://example.com/a", a.URL)
	require.NotNil(t, a.PublishedAt)
	assert.True(t, a.PublishedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestFetchErrorStatusCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, nil, nil).Fetch(context.Background(), "senado")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindFetch))
	assert.Contains(t, err.Error(), "Your API key is invalid.")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, okPayload)
	}))
	defer srv.Close()

	articles, err := newTestClient(srv.URL, nil, nil).Fetch(context.Background(), "senado")
	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchUsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		io.WriteString(w, okPayload)
	}))
	defer srv.Close()

	store := cache.New()
	defer store.Close()
	limiter := ratelimit.New(map[string]int{ratelimit.ServiceNewsAPI: 10}, 0, quietLogger())
	c := newTestClient(srv.URL, store, limiter)

	for i := 0; i < 2; i++ {
		articles, err := c.Fetch(context.Background(), "senado")
		require.NoError(t, err)
		assert.Len(t, articles, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.InDelta(t, 50.0, limiter.CacheHitRate(), 1e-9)
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	store := cache.New()
	defer store.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"error","message":"rateLimited"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, store, nil).Fetch(context.Background(), "senado")
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestFetchRespectsBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, okPayload)
	}))
	defer srv.Close()

	limiter := ratelimit.New(map[string]int{ratelimit.ServiceNewsAPI: 1}, 0, quietLogger())
	c := newTestClient(srv.URL, nil, limiter)

	_, err := c.Fetch(context.Background(), "uno")
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "dos")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindFetch))
	assert.True(t, errors.Is(err, ratelimit.ErrLimitExceeded))
}
