package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/articlekit/enrich/internal/model"
)

// ensure SQLite implements Storage
var _ Storage = (*SQLite)(nil)

// SQLite persists articles in a SQLite database file
type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	source_url TEXT NOT NULL DEFAULT '',
	updated_content TEXT,
	refs TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// NewSQLite opens (and creates if needed) a SQLite-backed store
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

const articleColumns = "id, title, content, source_url, updated_content, refs, created_at, updated_at"

// List returns all articles, newest first
func (s *SQLite) List(ctx context.Context) ([]model.Article, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+articleColumns+" FROM articles ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}
	return articles, rows.Err()
}

// Get returns one article or ErrNotFound
func (s *SQLite) Get(ctx context.Context, id int) (*model.Article, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return article, err
}

// Create inserts an article, assigning id and timestamps
func (s *SQLite) Create(ctx context.Context, article model.Article) (*model.Article, error) {
	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	refs, err := marshalRefs(article.References)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO articles (title, content, source_url, updated_content, refs, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		article.Title,
		article.Content,
		article.SourceURL,
		nullable(article.UpdatedContent),
		refs,
		article.CreatedAt.Format(time.RFC3339Nano),
		article.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	article.ID = int(id)
	return &article, nil
}

// Update applies a partial update or returns ErrNotFound
func (s *SQLite) Update(ctx context.Context, id int, update model.ArticleUpdate) (*model.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(article, update, time.Now().UTC())

	refs, err := marshalRefs(article.References)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE articles SET title = ?, content = ?, source_url = ?, updated_content = ?, refs = ?, updated_at = ? WHERE id = ?",
		article.Title,
		article.Content,
		article.SourceURL,
		nullable(article.UpdatedContent),
		refs,
		article.UpdatedAt.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}
	return article, nil
}

// Delete removes an article or returns ErrNotFound
func (s *SQLite) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	var (
		article        model.Article
		updatedContent sql.NullString
		refs           sql.NullString
		createdAt      string
		updatedAt      string
	)

	err := row.Scan(&article.ID, &article.Title, &article.Content, &article.SourceURL, &updatedContent, &refs, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if updatedContent.Valid {
		article.UpdatedContent = &updatedContent.String
	}
	if refs.Valid && refs.String != "" {
		if err := json.Unmarshal([]byte(refs.String), &article.References); err != nil {
			return nil, fmt.Errorf("decode references: %w", err)
		}
	}
	if article.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if article.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &article, nil
}

func marshalRefs(refs []model.Reference) (sql.NullString, error) {
	if refs == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode references: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
