package metrics

import (
	"sync"
	"time"
)

// Metrics holds pipeline counters. All methods are safe on a nil receiver so
// components can run without metrics.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	RunsStarted         int64
	RunsCompleted       int64
	RunsFailed          int64
	ArticlesFetched     int64
	ArticlesProcessed   int64
	FetchFailures       int64
	SentimentScored     int64
	SentimentFailures   int64
	ReportsWritten      int64
	CategoryAssignments map[string]int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

func New() *Metrics {
	return &Metrics{IsHealthy: true, CategoryAssignments: make(map[string]int64)}
}

func (m *Metrics) add(field *int64, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*field += int64(n)
}

func (m *Metrics) IncrementRunsStarted() {
	if m == nil {
		return
	}
	m.add(&m.RunsStarted, 1)
}

func (m *Metrics) IncrementRunsCompleted() {
	if m == nil {
		return
	}
	m.add(&m.RunsCompleted, 1)
}

func (m *Metrics) IncrementRunsFailed() {
	if m == nil {
		return
	}
	m.add(&m.RunsFailed, 1)
}

func (m *Metrics) AddArticlesFetched(n int) {
	if m == nil {
		return
	}
	m.add(&m.ArticlesFetched, n)
}

func (m *Metrics) AddArticlesProcessed(n int) {
	if m == nil {
		return
	}
	m.add(&m.ArticlesProcessed, n)
}

func (m *Metrics) IncrementFetchFailures() {
	if m == nil {
		return
	}
	m.add(&m.FetchFailures, 1)
}

func (m *Metrics) IncrementSentimentScored() {
	if m == nil {
		return
	}
	m.add(&m.SentimentScored, 1)
}

func (m *Metrics) IncrementSentimentFailures() {
	if m == nil {
		return
	}
	m.add(&m.SentimentFailures, 1)
}

func (m *Metrics) IncrementReportsWritten() {
	if m == nil {
		return
	}
	m.add(&m.ReportsWritten, 1)
}

func (m *Metrics) RecordCategory(category string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CategoryAssignments == nil {
		m.CategoryAssignments = make(map[string]int64)
	}
	m.CategoryAssignments[category]++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	if m == nil {
		return true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := make(map[string]int64, len(m.CategoryAssignments))
	for k, v := range m.CategoryAssignments {
		categories[k] = v
	}

	return map[string]interface{}{
		"runs_started":               m.RunsStarted,
		"runs_completed":             m.RunsCompleted,
		"runs_failed":                m.RunsFailed,
		"articles_fetched":           m.ArticlesFetched,
		"articles_processed":         m.ArticlesProcessed,
		"fetch_failures":             m.FetchFailures,
		"sentiment_scored":           m.SentimentScored,
		"sentiment_failures":         m.SentimentFailures,
		"reports_written":            m.ReportsWritten,
		"category_assignments":       categories,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
