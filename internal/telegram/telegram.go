package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deusflow/newsinsight/internal/report"
	"github.com/deusflow/newsinsight/internal/retry"
)

const (
	DefaultAPIURL = "https://api.telegram.org"
	// Telegram rejects messages longer than this many characters.
	maxMessageLen      = 4096
	defaultMaxHeadline = 10
)

// Notifier posts a digest of every report to a Telegram chat. It satisfies
// report.Writer so it can sit next to the file and S3 sinks.
type Notifier struct {
	token        string
	chatID       string
	apiURL       string
	maxHeadlines int
	httpClient   *http.Client
	retry        retry.RetryConfig
	log          *slog.Logger
}

func NewNotifier(token, chatID string, retryCfg retry.RetryConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram")
	if retryCfg.Logger == nil {
		retryCfg.Logger = log
	}
	return &Notifier{
		token:        token,
		chatID:       chatID,
		apiURL:       DefaultAPIURL,
		maxHeadlines: defaultMaxHeadline,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		retry:        retryCfg,
		log:          log,
	}
}

// Write sends the digest of s and returns "telegram:<chat id>".
func (n *Notifier) Write(ctx context.Context, s report.Summary) (string, error) {
	text := FormatSummary(s, n.maxHeadlines)
	if err := retry.WithRetry(ctx, n.retry, func(ctx context.Context) error {
		return n.sendMessageOnce(ctx, text)
	}); err != nil {
		return "", fmt.Errorf("send telegram digest: %w", err)
	}
	n.log.Info("digest sent", "chat_id", n.chatID, "length", utf8.RuneCountInString(text))
	return "telegram:" + n.chatID, nil
}

// sendMessageOnce does one try to send message
func (n *Notifier) sendMessageOnce(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.token)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return retry.Permanent(fmt.Errorf("error make JSON: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}

// FormatSummary renders s as a Telegram HTML message with at most
// maxHeadlines linked titles.
func FormatSummary(s report.Summary, maxHeadlines int) string {
	var b strings.Builder

	b.WriteString("📊 <b>Resumen de noticias</b>\n")
	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Fprintf(&b, "📰 Artículos analizados: <b>%d</b>\n\n", len(s.ResumeArticles))

	if s.CategoryDistribution.Len() > 0 {
		b.WriteString("🏷 <b>Categorías</b>\n")
		for _, c := range s.CategoryDistribution.Entries() {
			fmt.Fprintf(&b, "• %s: %d\n", html.EscapeString(c.Name), c.Value)
		}
		b.WriteString("\n")
	}

	if len(s.TopKeywords) > 0 {
		words := make([]string, len(s.TopKeywords))
		for i, k := range s.TopKeywords {
			words[i] = fmt.Sprintf("%s (%d)", html.EscapeString(k.Keyword), k.Frequency)
		}
		fmt.Fprintf(&b, "🔑 <b>Palabras clave:</b> %s\n\n", strings.Join(words, ", "))
	}

	if s.ActiveSources.Len() > 0 {
		b.WriteString("📡 <b>Fuentes más activas</b>\n")
		for _, c := range s.ActiveSources.Entries() {
			fmt.Fprintf(&b, "• %s: %d\n", html.EscapeString(c.Name), c.Value)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "💬 <b>Sentimiento:</b> 👍 %d · 😐 %d · 👎 %d\n",
		s.Sentiments.Positive, s.Sentiments.Neutral, s.Sentiments.Negative)

	if len(s.ResumeArticles) > 0 && maxHeadlines > 0 {
		b.WriteString("\n<b>Titulares</b>\n")
		for i, a := range s.ResumeArticles {
			if i >= maxHeadlines {
				fmt.Fprintf(&b, "… y %d más\n", len(s.ResumeArticles)-maxHeadlines)
				break
			}
			title := html.EscapeString(a.Title)
			if a.URL != "" {
				fmt.Fprintf(&b, "%d. <a href=\"%s\">%s</a>\n", i+1, html.EscapeString(a.URL), title)
			} else {
				fmt.Fprintf(&b, "%d. %s\n", i+1, title)
			}
		}
	}

	return truncate(b.String(), maxMessageLen)
}

// truncate cuts s to at most max runes, ending at a line break when one is
// available so no HTML tag is left open.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max-1])
	if i := strings.LastIndex(cut, "\n"); i > 0 {
		cut = cut[:i+1]
	}
	return cut + "…"
}
