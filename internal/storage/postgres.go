package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/deusflow/newsinsight/internal/news"
)

// PostgresStore keeps articles in PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresStore connects, pings and creates the schema if needed.
func NewPostgresStore(ctx context.Context, connectionString string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db, log: logger.With("component", "storage")}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.log.Info("PostgreSQL article store connected")
	return store, nil
}

// initSchema creates the necessary tables if they don't exist
func (ps *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		content TEXT,
		url TEXT NOT NULL,
		source VARCHAR(200) NOT NULL,
		author TEXT,
		published_at TIMESTAMPTZ,
		category VARCHAR(100) NOT NULL DEFAULT 'otros',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (title, published_at)
	);

	CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
	CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
	`

	if _, err := ps.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save upserts articles in one transaction.
func (ps *PostgresStore) Save(ctx context.Context, articles []news.Article) (int, error) {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// xmax = 0 only for freshly inserted rows.
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (title, description, content, url, source, author, published_at, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (title, published_at) DO UPDATE SET
			description = EXCLUDED.description,
			content = EXCLUDED.content,
			url = EXCLUDED.url,
			source = EXCLUDED.source,
			author = EXCLUDED.author
		RETURNING (xmax = 0)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, a := range articles {
		category := a.Category
		if category == "" {
			category = news.DefaultCategory
		}
		var inserted bool
		err := stmt.QueryRowContext(ctx,
			a.TitleText(), nullString(a.Description), nullString(a.Content),
			a.URL, a.Source, nullString(a.Author), nullTime(a.PublishedAt), category,
		).Scan(&inserted)
		if err != nil {
			return 0, fmt.Errorf("failed to save article %q: %w", a.TitleText(), err)
		}
		if inserted {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit articles: %w", err)
	}
	return added, nil
}

func (ps *PostgresStore) List(ctx context.Context) ([]news.Article, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT id, title, description, content, url, source, author, published_at, category
		FROM articles
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var out []news.Article
	for rows.Next() {
		var (
			a                          news.Article
			title                      string
			description, content, auth sql.NullString
			published                  sql.NullTime
		)
		if err := rows.Scan(&a.ID, &title, &description, &content, &a.URL, &a.Source, &auth, &published, &a.Category); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		a.Title = news.String(title)
		a.Description = fromNullString(description)
		a.Content = fromNullString(content)
		a.Author = fromNullString(auth)
		if published.Valid {
			a.PublishedAt = news.Time(published.Time.UTC())
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (ps *PostgresStore) SetCategories(ctx context.Context, articles []news.Article) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE articles SET category = $1
		WHERE title = $2 AND published_at IS NOT DISTINCT FROM $3
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare category update: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		if _, err := stmt.ExecContext(ctx, a.Category, a.TitleText(), nullTime(a.PublishedAt)); err != nil {
			return fmt.Errorf("failed to update category of %q: %w", a.TitleText(), err)
		}
	}
	return tx.Commit()
}

// GetStats returns store statistics
func (ps *PostgresStore) GetStats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)

	var total int
	if err := ps.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&total); err != nil {
		return nil, err
	}
	stats["total_items"] = total

	rows, err := ps.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM articles GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats["category_"+category] = count
	}
	return stats, rows.Err()
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return news.String(ns.String)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
