package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/deusflow/newsinsight/internal/errs"
)

// Article sources.
const (
	SourceNewsAPI = "newsapi"
	SourceRSS     = "rss"
	SourceStore   = "store"
)

// Sentiment signal sets.
const (
	SignalLexicon = "lexicon"
	SignalVader   = "vader"
	SignalGemini  = "gemini"
)

// Storage and cache backends.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	// News source settings
	NewsAPIKey      string
	NewsAPIURL      string
	NewsLanguage    string
	NewsQueries     []string
	ArticleSource   string // newsapi | rss | store
	FeedsConfigPath string
	MaxNewsRequests int // daily NewsAPI budget (0 = unlimited)

	// Analysis settings
	CategoriesPath  string
	LexiconPath     string // empty = built-in lexicon
	TopKeywords     int
	TopTopics       int
	TopSources      int
	SentimentSignal string // lexicon | vader | gemini

	// Gemini settings
	GeminiAPIKey      string
	GeminiModel       string
	MaxGeminiRequests int // daily Gemini budget (0 = unlimited)

	// Report settings
	ReportDir      string
	S3Bucket       string
	S3Region       string
	S3Prefix       string
	S3Profile      string
	S3UsePathStyle bool
	TelegramToken  string
	TelegramChatID string

	// Storage settings
	StorageBackend   string // none | file | postgres
	DatabaseURL      string
	ArticleStorePath string

	// Cache settings
	CacheBackend string // none | memory | redis
	RedisURL     string
	CacheTTL     time.Duration

	// App settings
	HTTPAddr       string
	CORSOrigins    []string
	Debug          bool
	LogFormat      string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		NewsAPIURL:        "https://newsapi.org/v2/everything",
		NewsLanguage:      "es",
		NewsQueries:       []string{"senado"},
		ArticleSource:     SourceNewsAPI,
		FeedsConfigPath:   "configs/feeds.yaml",
		MaxNewsRequests:   100,
		CategoriesPath:    "configs/categories.json",
		TopKeywords:       10,
		TopTopics:         5,
		TopSources:        5,
		SentimentSignal:   SignalLexicon,
		GeminiModel:       "gemini-1.5-flash",
		MaxGeminiRequests: 50,
		ReportDir:         "data/download",
		StorageBackend:    BackendNone,
		ArticleStorePath:  "data/articles.json",
		CacheBackend:      BackendMemory,
		CacheTTL:          30 * time.Minute,
		HTTPAddr:          ":8080",
		LogFormat:         "text",
		RequestTimeout:    30 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        2 * time.Second,
	}

	// Load from environment
	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.LexiconPath = os.Getenv("LEXICON_PATH")

	cfg.NewsAPIURL = getEnvOrDefault("NEWS_API_URL", cfg.NewsAPIURL)
	cfg.NewsLanguage = getEnvOrDefault("NEWS_LANGUAGE", cfg.NewsLanguage)
	if q := os.Getenv("NEWS_QUERIES"); q != "" {
		cfg.NewsQueries = splitList(q)
	}
	cfg.ArticleSource = strings.ToLower(getEnvOrDefault("ARTICLE_SOURCE", cfg.ArticleSource))
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.MaxNewsRequests = getEnvIntOrDefault("MAX_NEWS_REQUESTS", cfg.MaxNewsRequests)

	cfg.CategoriesPath = getEnvOrDefault("CATEGORIES_PATH", cfg.CategoriesPath)
	cfg.TopKeywords = getEnvIntOrDefault("TOP_KEYWORDS", cfg.TopKeywords)
	cfg.TopTopics = getEnvIntOrDefault("TOP_TOPICS", cfg.TopTopics)
	cfg.TopSources = getEnvIntOrDefault("TOP_SOURCES", cfg.TopSources)
	cfg.SentimentSignal = strings.ToLower(getEnvOrDefault("SENTIMENT_SIGNAL", cfg.SentimentSignal))

	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", cfg.MaxGeminiRequests)

	cfg.ReportDir = getEnvOrDefault("REPORT_DIR", cfg.ReportDir)
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Region = os.Getenv("S3_REGION")
	cfg.S3Prefix = os.Getenv("S3_PREFIX")
	cfg.S3Profile = os.Getenv("S3_PROFILE")
	cfg.S3UsePathStyle = os.Getenv("S3_USE_PATH_STYLE") == "true"
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.StorageBackend = strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", cfg.StorageBackend))
	cfg.ArticleStorePath = getEnvOrDefault("ARTICLE_STORE_PATH", cfg.ArticleStorePath)

	cfg.CacheBackend = strings.ToLower(getEnvOrDefault("CACHE_BACKEND", cfg.CacheBackend))
	if v := getEnvIntOrDefault("CACHE_TTL_MINUTES", 0); v > 0 {
		cfg.CacheTTL = time.Duration(v) * time.Minute
	}

	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))
	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RetryDelay = getEnvDurationOrDefault("RETRY_DELAY", cfg.RetryDelay)

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("5s") or plain seconds ("5").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return errs.Config("validate config", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.ArticleSource {
	case SourceNewsAPI:
		if c.NewsAPIKey == "" {
			return fmt.Errorf("NEWS_API_KEY is required when ARTICLE_SOURCE=newsapi")
		}
	case SourceRSS:
		if c.FeedsConfigPath == "" {
			return fmt.Errorf("FEEDS_CONFIG_PATH is required when ARTICLE_SOURCE=rss")
		}
	case SourceStore:
		if c.StorageBackend == BackendNone {
			return fmt.Errorf("ARTICLE_SOURCE=store needs STORAGE_BACKEND set to file or postgres")
		}
	default:
		return fmt.Errorf("ARTICLE_SOURCE must be 'newsapi', 'rss' or 'store'")
	}

	switch c.SentimentSignal {
	case SignalLexicon, SignalVader:
	case SignalGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when SENTIMENT_SIGNAL=gemini")
		}
	default:
		return fmt.Errorf("SENTIMENT_SIGNAL must be 'lexicon', 'vader' or 'gemini'")
	}

	switch c.StorageBackend {
	case BackendNone, BackendFile:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'none', 'file' or 'postgres'")
	}

	switch c.CacheBackend {
	case BackendNone, BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be 'none', 'memory' or 'redis'")
	}

	if c.CategoriesPath == "" {
		return fmt.Errorf("CATEGORIES_PATH is required")
	}
	if c.TopKeywords <= 0 || c.TopTopics <= 0 || c.TopSources <= 0 {
		return fmt.Errorf("TOP_KEYWORDS, TOP_TOPICS and TOP_SOURCES must be positive")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	if c.ReportDir == "" && c.S3Bucket == "" {
		return fmt.Errorf("REPORT_DIR or S3_BUCKET is required")
	}
	return nil
}
