// Package analysis holds the rule-based article analytics: text
// normalization, keyword categorization, keyword frequency extraction and
// the aggregate views that end up in a report.
package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/deusflow/newsinsight/internal/news"
)

// Normalize lowercases s and strips combining accents ("Política" -> "politica").
// Invalid UTF-8 sequences are dropped rather than reported.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	// Chained transformers keep state, so one is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// CombinedText joins title, content and description the way both the
// categorizer and the keyword extractor read an article. Absent fields count
// as empty strings.
func CombinedText(a news.Article) string {
	return a.TitleText() + " " + a.ContentText() + " " + a.DescriptionText()
}
