package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

// PostgresLinkRepository records which article links have already been
// reported, so later runs can skip them.
type PostgresLinkRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.LinkRepository = (*PostgresLinkRepository)(nil)

// NewPostgresLinkRepository wires a sql.DB implementation.
func NewPostgresLinkRepository(db *sql.DB) *PostgresLinkRepository {
	return &PostgresLinkRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// SeenLinks returns a set of the given links that already exist in storage.
func (r *PostgresLinkRepository) SeenLinks(ctx context.Context, links []string) (map[string]bool, error) {
	if r.db == nil || len(links) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder.
		Select("link").
		From("reported_links").
		Where(sq.Eq{"link": links}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen links: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		result[link] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// MarkReported records links that made it into a delivered report.
func (r *PostgresLinkRepository) MarkReported(ctx context.Context, docs []domain.Document) error {
	if r.db == nil || len(docs) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("reported_links").
		Columns("link", "title", "source", "published_at")
	for _, doc := range docs {
		insert = insert.Values(doc.Link, doc.Title, doc.Source, doc.PublishedAt)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (link) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert reported links: %w", err)
	}
	return nil
}
