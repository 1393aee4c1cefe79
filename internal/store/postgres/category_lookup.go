package postgres

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// category is one row of the read-only job_categories table:
//
//	CREATE TABLE job_categories (
//	    id TEXT PRIMARY KEY,
//	    name TEXT NOT NULL UNIQUE,
//	    keywords TEXT[] NOT NULL DEFAULT '{}'
//	);
type category struct {
	id       string
	name     string
	keywords []string
}

type queryPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CategoryLookup resolves categories by name or keyword match. The table is
// small and owned by an administrative service, so rows load once at
// construction and matching happens in process.
type CategoryLookup struct {
	categories []category
}

// NewCategoryLookup loads the category table.
func NewCategoryLookup(ctx context.Context, pool queryPool) (*CategoryLookup, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("id", "name", "keywords").
		From("job_categories").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	var categories []category
	for rows.Next() {
		var c category
		if err := rows.Scan(&c.id, &c.name, &c.keywords); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return &CategoryLookup{categories: categories}, nil
}

// FindByNameOrKeyword returns the first category whose name or any keyword
// occurs in the text, case-insensitive.
func (l *CategoryLookup) FindByNameOrKeyword(_ context.Context, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, c := range l.categories {
		if strings.Contains(lower, strings.ToLower(c.name)) {
			return c.id, true
		}
		for _, kw := range c.keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return c.id, true
			}
		}
	}
	return "", false
}
