package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ArticleContent is full article content
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

// PlainText strips markup from an HTML fragment and collapses whitespace.
// Text without markup is returned with whitespace collapsed.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpaces(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpaces(fragment)
	}
	doc.Find("script, style").Remove()
	return collapseSpaces(doc.Text())
}

// truncationMarker matches the "… [+1234 chars]" tail that news APIs append
// to shortened content.
var truncationMarker = regexp.MustCompile(`\s*(…|\.\.\.)?\s*\[\+\d+ chars\]\s*$`)

// TrimTruncationMarker removes a trailing "[+N chars]" marker.
func TrimTruncationMarker(s string) string {
	return truncationMarker.ReplaceAllString(s, "")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Extractor downloads article pages and pulls out their body text.
type Extractor struct {
	client *http.Client
	log    *slog.Logger
}

func NewExtractor(timeout time.Duration, logger *slog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		log:    logger.With("component", "scraper"),
	}
}

// ExtractFullArticle gets full text of article by URL
func (e *Extractor) ExtractFullArticle(ctx context.Context, url string) (*ArticleContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "newsinsight/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	content := cleanContent(extractContentBySource(doc, url))
	if content == "" {
		return nil, fmt.Errorf("can't get content")
	}

	return &ArticleContent{
		Title:   extractTitle(doc),
		Content: content,
		URL:     url,
	}, nil
}

// siteSelectors lists body paragraph selectors for sites with known markup.
var siteSelectors = map[string][]string{
	"elpais.com": {
		`[data-dtm-region="articulo_cuerpo"] p`,
		".a_c p",
		"article p",
	},
	"elmundo.es": {
		".ue-c-article__body p",
		"article p",
	},
	"abc.es": {
		".voc-article-content p",
		"article p",
	},
	"lavanguardia.com": {
		".article-modules p",
		"article p",
	},
}

var genericSelectors = []string{
	"article p",
	".article p",
	".content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	"p",
}

// extractContentBySource gets content by news site
func extractContentBySource(doc *goquery.Document, url string) string {
	for host, selectors := range siteSelectors {
		if strings.Contains(url, host) {
			if content := collectParagraphs(doc, selectors, 10, 1); content != "" {
				return content
			}
			break
		}
	}
	return collectParagraphs(doc, genericSelectors, 20, 3)
}

// collectParagraphs tries selectors in order until one yields at least
// enough paragraphs longer than minLen.
func collectParagraphs(doc *goquery.Document, selectors []string, minLen, enough int) string {
	var paragraphs []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > minLen {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= enough {
			break
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// extractTitle gets article title
func extractTitle(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		`meta[property="og:title"]`,
		"title",
	}

	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title = strings.TrimSpace(sel.AttrOr("content", ""))
		}
		if title != "" {
			return title
		}
	}
	return ""
}

var junkPhrases = []string{
	"Lee también", "Leer más", "Te puede interesar", "Más información",
	"Suscríbete", "Inicia sesión", "Regístrate", "Compartir en",
	"Política de privacidad", "Aceptar cookies", "Publicidad",
}

// cleanContent drops boilerplate paragraphs and caps the length on a
// paragraph boundary.
func cleanContent(content string) string {
	if content == "" {
		return ""
	}

	var kept []string
	for _, p := range strings.Split(content, "\n\n") {
		p = collapseSpaces(p)
		if len(p) < 30 || isJunk(p) {
			continue
		}
		kept = append(kept, p)
	}

	var out []string
	total := 0
	for _, p := range kept {
		if total > 0 && total+len(p) > 4000 {
			break
		}
		out = append(out, p)
		total += len(p) + 2
	}
	return strings.Join(out, "\n\n")
}

func isJunk(paragraph string) bool {
	lower := strings.ToLower(paragraph)
	for _, phrase := range junkPhrases {
		if strings.HasPrefix(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
