package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/deusflow/newsinsight/internal/news"
)

// FileStore keeps articles in a JSON file. It suits single-process use.
type FileStore struct {
	filePath string
	mu       sync.RWMutex
	articles []news.Article
	index    map[string]int
	nextID   int64
}

// OpenFileStore loads the store at filePath; a missing file is an empty store.
func OpenFileStore(filePath string) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		index:    make(map[string]int),
		nextID:   1,
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read article store: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var articles []news.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return fmt.Errorf("failed to unmarshal article store: %w", err)
	}
	for _, a := range articles {
		fs.index[a.Key()] = len(fs.articles)
		fs.articles = append(fs.articles, a)
		if a.ID >= fs.nextID {
			fs.nextID = a.ID + 1
		}
	}
	return nil
}

// persist writes articles through a temp file and rename. Callers hold mu.
func (fs *FileStore) persist(articles []news.Article) error {
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal article store: %w", err)
	}
	if dir := filepath.Dir(fs.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store dir: %w", err)
		}
	}

	tmp := fs.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write article store: %w", err)
	}
	if err := os.Rename(tmp, fs.filePath); err != nil {
		return fmt.Errorf("failed to replace article store: %w", err)
	}
	return nil
}

// Save upserts articles. A failed write leaves the store unchanged.
func (fs *FileStore) Save(ctx context.Context, articles []news.Article) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	next := append(make([]news.Article, 0, len(fs.articles)+len(articles)), fs.articles...)
	index := make(map[string]int, len(fs.index)+len(articles))
	for k, v := range fs.index {
		index[k] = v
	}
	nextID := fs.nextID

	added := 0
	for _, a := range articles {
		key := a.Key()
		if i, ok := index[key]; ok {
			a.ID = next[i].ID
			a.Category = next[i].Category
			next[i] = a
			continue
		}
		a.ID = nextID
		nextID++
		if a.Category == "" {
			a.Category = news.DefaultCategory
		}
		index[key] = len(next)
		next = append(next, a)
		added++
	}
	if err := fs.persist(next); err != nil {
		return 0, err
	}
	fs.articles, fs.index, fs.nextID = next, index, nextID
	return added, nil
}

func (fs *FileStore) List(ctx context.Context) ([]news.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return append([]news.Article(nil), fs.articles...), nil
}

func (fs *FileStore) SetCategories(ctx context.Context, articles []news.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	next := append([]news.Article(nil), fs.articles...)
	for _, a := range articles {
		if i, ok := fs.index[a.Key()]; ok {
			next[i].Category = a.Category
		}
	}
	if err := fs.persist(next); err != nil {
		return err
	}
	fs.articles = next
	return nil
}

// GetStats returns store statistics
func (fs *FileStore) GetStats(_ context.Context) (map[string]int, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	stats := map[string]int{"total_items": len(fs.articles)}
	for _, a := range fs.articles {
		stats["category_"+a.Category]++
	}
	return stats, nil
}

func (fs *FileStore) Close() error { return nil }
