package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsinsight/internal/errs"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceNewsAPI, cfg.ArticleSource)
	assert.Equal(t, "es", cfg.NewsLanguage)
	assert.Equal(t, []string{"senado"}, cfg.NewsQueries)
	assert.Equal(t, 10, cfg.TopKeywords)
	assert.Equal(t, 5, cfg.TopTopics)
	assert.Equal(t, 5, cfg.TopSources)
	assert.Equal(t, SignalLexicon, cfg.SentimentSignal)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "key")
	t.Setenv("NEWS_QUERIES", "senado, congreso ,,futbol")
	t.Setenv("TOP_SOURCES", "3")
	t.Setenv("REQUEST_TIMEOUT", "10")
	t.Setenv("RETRY_DELAY", "250ms")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CACHE_TTL_MINUTES", "5")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"senado", "congreso", "futbol"}, cfg.NewsQueries)
	assert.Equal(t, 3, cfg.TopSources)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, BackendRedis, cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Debug)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing news key", map[string]string{}},
		{"unknown source", map[string]string{"ARTICLE_SOURCE": "twitter"}},
		{"store without storage", map[string]string{"ARTICLE_SOURCE": "store"}},
		{"unknown signal", map[string]string{"NEWS_API_KEY": "k", "SENTIMENT_SIGNAL": "textblob"}},
		{"gemini without key", map[string]string{"NEWS_API_KEY": "k", "SENTIMENT_SIGNAL": "gemini"}},
		{"postgres without url", map[string]string{"NEWS_API_KEY": "k", "STORAGE_BACKEND": "postgres"}},
		{"redis without url", map[string]string{"NEWS_API_KEY": "k", "CACHE_BACKEND": "redis"}},
		{"zero top keywords", map[string]string{"NEWS_API_KEY": "k", "TOP_KEYWORDS": "0"}},
		{"telegram token without chat", map[string]string{"NEWS_API_KEY": "k", "TELEGRAM_TOKEN": "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NEWS_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.KindConfig))
		})
	}
}

func TestRSSSourceNeedsNoAPIKey(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("ARTICLE_SOURCE", "rss")

	_, err := Load()
	assert.NoError(t, err)
}

func TestVaderSignal(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "key")
	t.Setenv("SENTIMENT_SIGNAL", "VADER")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SignalVader, cfg.SentimentSignal)
}

func TestLoadListsAndTelegram(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "key")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://news.example.com")
	t.Setenv("TELEGRAM_TOKEN", "t")
	t.Setenv("TELEGRAM_CHAT_ID", "-100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "https://news.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "-100", cfg.TelegramChatID)
}
