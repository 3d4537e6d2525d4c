package analysis

import (
	"bytes"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/deusflow/newsinsight/internal/news"
)

// Counts is an ordered name to count mapping. It marshals to a JSON object
// whose keys keep insertion order. An empty Counts holds no map.
type Counts struct {
	m *orderedmap.OrderedMap[string, int]
}

// Count is a single Counts entry.
type Count struct {
	Name  string
	Value int
}

// NewCounts builds Counts from entries in the given order. Repeated names are
// summed into their first position.
func NewCounts(entries ...Count) Counts {
	var c Counts
	for _, e := range entries {
		c.Add(e.Name, e.Value)
	}
	return c
}

// Add increments name by n, appending it if unseen.
func (c *Counts) Add(name string, n int) {
	if c.m == nil {
		c.m = orderedmap.New[string, int]()
	}
	old, _ := c.m.Get(name)
	c.m.Set(name, old+n)
}

func (c Counts) Get(name string) int {
	if c.m == nil {
		return 0
	}
	return c.m.Value(name)
}

func (c Counts) Len() int {
	if c.m == nil {
		return 0
	}
	return c.m.Len()
}

func (c Counts) Keys() []string {
	keys := make([]string, 0, c.Len())
	for _, e := range c.Entries() {
		keys = append(keys, e.Name)
	}
	return keys
}

// Entries returns the counts in order.
func (c Counts) Entries() []Count {
	out := make([]Count, 0, c.Len())
	if c.m == nil {
		return out
	}
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Count{Name: pair.Key, Value: pair.Value})
	}
	return out
}

// Total sums every count.
func (c Counts) Total() int {
	total := 0
	for _, e := range c.Entries() {
		total += e.Value
	}
	return total
}

// Sorted returns a copy ordered by descending count. Equal counts keep their
// current relative order.
func (c Counts) Sorted() Counts {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	return NewCounts(entries...)
}

// Top returns the first n entries; n <= 0 keeps everything.
func (c Counts) Top(n int) Counts {
	entries := c.Entries()
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return NewCounts(entries...)
}

func (c Counts) MarshalJSON() ([]byte, error) {
	if c.m == nil {
		return []byte("{}"), nil
	}
	return c.m.MarshalJSON()
}

func (c *Counts) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*c = Counts{}
		return nil
	}
	m := orderedmap.New[string, int]()
	if err := m.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("counts: %w", err)
	}
	if m.Len() == 0 {
		m = nil
	}
	*c = Counts{m: m}
	return nil
}

// TopicCount is one entry of the popular topics ranking.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// CategoryDistribution counts articles per category, sorted by descending
// count with ties in first-seen order. Blank categories count as the default.
func CategoryDistribution(articles []news.Article) Counts {
	var c Counts
	for _, a := range articles {
		category := a.Category
		if category == "" {
			category = news.DefaultCategory
		}
		c.Add(category, 1)
	}
	return c.Sorted()
}

// PopularTopics is the top-n view of a category distribution.
func PopularTopics(distribution Counts, n int) []TopicCount {
	entries := distribution.Sorted().Top(n).Entries()
	out := make([]TopicCount, len(entries))
	for i, e := range entries {
		out[i] = TopicCount{Topic: e.Name, Count: e.Value}
	}
	return out
}

// PublicationFrequency counts articles per source name, sorted by descending
// count with ties in first-seen order. Only sources present in articles are
// listed. topN <= 0 returns every source.
func PublicationFrequency(articles []news.Article, topN int) Counts {
	var c Counts
	for _, a := range articles {
		c.Add(a.Source, 1)
	}
	return c.Sorted().Top(topN)
}
