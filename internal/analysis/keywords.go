package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is the shortest token counted as a keyword, in runes.
const minTokenLen = 2

// KeywordFrequency is one entry of a top-keywords ranking.
type KeywordFrequency struct {
	Keyword   string `json:"keyword"`
	Frequency int    `json:"frequency"`
}

// KeywordExtractor ranks corpus tokens by total occurrence count.
type KeywordExtractor struct {
	stopwords map[string]struct{}
}

// NewKeywordExtractor builds an extractor using the default stopwords plus
// any extra ones.
func NewKeywordExtractor(extra ...string) *KeywordExtractor {
	return &KeywordExtractor{stopwords: stopwordSet(append(DefaultStopwords(), extra...))}
}

// IsStopword reports whether the normalized form of w is filtered out.
func (e *KeywordExtractor) IsStopword(w string) bool {
	_, ok := e.stopwords[Normalize(w)]
	return ok
}

// Top returns at most k keywords sorted by descending frequency. Equal counts
// are ordered alphabetically, which also decides which of them survive the cap.
func (e *KeywordExtractor) Top(texts []string, k int) []KeywordFrequency {
	if k <= 0 {
		return []KeywordFrequency{}
	}

	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		for _, tok := range Tokenize(Normalize(text)) {
			if _, stop := e.stopwords[tok]; stop {
				continue
			}
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		ci, cj := counts[order[i]], counts[order[j]]
		if ci != cj {
			return ci > cj
		}
		return order[i] < order[j]
	})
	if len(order) > k {
		order = order[:k]
	}

	out := make([]KeywordFrequency, len(order))
	for i, tok := range order {
		out[i] = KeywordFrequency{Keyword: tok, Frequency: counts[tok]}
	}
	return out
}

// Tokenize splits text into runs of letters, digits and underscores, dropping
// runs shorter than two runes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLen {
			out = append(out, f)
		}
	}
	return out
}
