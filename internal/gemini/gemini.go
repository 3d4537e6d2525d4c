package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/newsinsight/internal/ratelimit"
)

const (
	DefaultModel = "gemini-1.5-flash"
	maxTitleLen  = 500
)

// ErrNoResponse is returned when the model produced no candidates.
var ErrNoResponse = errors.New("no response from Gemini")

// Client asks a Gemini model for the polarity of a headline. It satisfies
// sentiment.Signal.
type Client struct {
	client   *genai.Client
	model    string
	limiter  *ratelimit.Limiter
	log      *slog.Logger
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewClient connects to Gemini. limiter may be nil.
func NewClient(ctx context.Context, apiKey, model string, limiter *ratelimit.Limiter, logger *slog.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		client:  client,
		model:   model,
		limiter: limiter,
		log:     logger.With("component", "gemini"),
	}
	c.generate = c.generateContent
	return c, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) Name() string { return "gemini" }

// Polarity returns the model's polarity estimate for text, in [-1, 1].
func (c *Client) Polarity(ctx context.Context, text string) (float64, error) {
	if c.limiter != nil {
		if err := c.limiter.Use(ratelimit.ServiceGemini); err != nil {
			return 0, err
		}
	}

	resp, err := c.generate(ctx, buildPrompt(sanitize(text)))
	if err != nil {
		return 0, err
	}
	score, err := parsePolarity(resp)
	if err != nil {
		c.log.Warn("unparseable polarity response", "response", resp, "error", err)
		return 0, err
	}
	return score, nil
}

func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoResponse
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// sanitize collapses whitespace and caps the text length on a rune boundary.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > maxTitleLen {
		text = string([]rune(text)[:maxTitleLen])
	}
	return text
}

func buildPrompt(title string) string {
	return fmt.Sprintf(`Evalúa el sentimiento del siguiente titular de noticias en español.

TITULAR: %s

Responde con una sola línea en este formato exacto:
POLARIDAD: <número entre -1 y 1>

-1 es totalmente negativo, 0 es neutral y 1 es totalmente positivo.
`, title)
}

var polarityLabel = regexp.MustCompile(`(?i)polaridad\s*:\s*([-+]?\d+(?:[.,]\d+)?)`)

func parsePolarity(response string) (float64, error) {
	m := polarityLabel.FindStringSubmatch(response)
	if m == nil {
		return 0, fmt.Errorf("could not parse Gemini response: missing POLARIDAD label")
	}
	score, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse Gemini polarity %q: %w", m[1], err)
	}
	if score < -1 || score > 1 {
		return 0, fmt.Errorf("gemini polarity %v out of range [-1, 1]", score)
	}
	return score, nil
}
