package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/newsinsight/internal/analysis"
	"github.com/deusflow/newsinsight/internal/errs"
	"github.com/deusflow/newsinsight/internal/news"
	"github.com/deusflow/newsinsight/internal/pipeline"
	"github.com/deusflow/newsinsight/internal/report"
)

var errNoStore = errs.Config("api", errors.New("article storage is not configured"))

type GetNewsResponse struct {
	Message     string         `json:"message"`
	Articles    []news.Article `json:"articles"`
	FetchErrors []string       `json:"fetch_errors,omitempty"`
}

type PopularAndCategoriesResponse struct {
	PopularNews []news.Article  `json:"popular_news"`
	Categories  analysis.Counts `json:"categories"`
}

type AnalyzeNewsResponse struct {
	pipeline.CategoryAnalysis
	PublicationFrequency analysis.Counts `json:"publication_frequency"`
}

type AnalyzeSentimentsResponse struct {
	Articles []pipeline.TitleSentiment   `json:"articles"`
	Failed   []pipeline.SentimentFailure `json:"failed,omitempty"`
}

// getNews fetches the requested queries (?q=a&q=b or ?q=a,b) and stores
// the results.
func (s *Server) getNews(c *gin.Context) {
	queries := requestQueries(c)
	if len(queries) == 0 {
		queries = s.opts.DefaultQueries
	}
	if len(queries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no query given"})
		return
	}

	articles, fetchErrs, err := s.pipeline.Fetch(c.Request.Context(), queries)
	if err != nil {
		s.fail(c, "fetch failed", err)
		return
	}

	msgs := make([]string, len(fetchErrs))
	for i, e := range fetchErrs {
		msgs[i] = e.Error()
	}

	if len(articles) == 0 {
		if len(fetchErrs) == len(queries) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "every query failed", "fetch_errors": msgs})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "No articles found"})
		return
	}

	c.JSON(http.StatusOK, GetNewsResponse{
		Message:     "News fetched and stored successfully",
		Articles:    articles,
		FetchErrors: msgs,
	})
}

func requestQueries(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("q") {
		for _, q := range strings.Split(raw, ",") {
			if q = strings.TrimSpace(q); q != "" {
				out = append(out, q)
			}
		}
	}
	return out
}

func (s *Server) storedArticles(c *gin.Context) ([]news.Article, bool) {
	if s.store == nil {
		s.fail(c, "cannot load articles", errNoStore)
		return nil, false
	}
	articles, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, "cannot load articles", errs.IO("list articles", err))
		return nil, false
	}
	return articles, true
}

// getPopularAndCategories recategorizes every stored article and saves the
// new categories.
func (s *Server) getPopularAndCategories(c *gin.Context) {
	articles, ok := s.storedArticles(c)
	if !ok {
		return
	}

	categorized, err := s.pipeline.Categorize(c.Request.Context(), articles)
	if err != nil {
		s.fail(c, "categorization failed", err)
		return
	}

	c.JSON(http.StatusOK, PopularAndCategoriesResponse{
		PopularNews: categorized,
		Categories:  analysis.CategoryDistribution(categorized),
	})
}

// analyzeNews reports on the stored categories without recategorizing.
func (s *Server) analyzeNews(c *gin.Context) {
	articles, ok := s.storedArticles(c)
	if !ok {
		return
	}

	cats, err := s.pipeline.AnalyzeCategories(c.Request.Context(), articles)
	if err != nil {
		s.fail(c, "analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeNewsResponse{
		CategoryAnalysis:     cats,
		PublicationFrequency: analysis.PublicationFrequency(articles, 0),
	})
}

func (s *Server) analyzeSentiments(c *gin.Context) {
	articles, ok := s.storedArticles(c)
	if !ok {
		return
	}

	res, err := s.pipeline.AnalyzeSentiments(c.Request.Context(), articles)
	if err != nil {
		s.fail(c, "sentiment analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeSentimentsResponse{Articles: res.Titles, Failed: res.Failures})
}

// generateReport runs the full analysis over the stored articles and sends
// the artifact back as a download.
func (s *Server) generateReport(c *gin.Context) {
	articles, ok := s.storedArticles(c)
	if !ok {
		return
	}

	res, err := s.pipeline.Analyze(c.Request.Context(), articles)
	if err != nil {
		s.fail(c, "report failed", err)
		return
	}

	data, err := res.Summary.Bytes()
	if err != nil {
		s.fail(c, "report failed", errs.IO("encode report", err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+report.DownloadName)
	c.Header("X-Report-Location", res.Location)
	c.Data(http.StatusOK, "application/json", data)
}
