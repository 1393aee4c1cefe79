package memory

import (
	"context"
	"strings"
)

// Category is one lookup entry.
type Category struct {
	ID       string
	Name     string
	Keywords []string
}

// CategoryLookup implements ingest.CategoryLookup over a fixed slice.
type CategoryLookup struct {
	categories []Category
}

// NewCategoryLookup constructs a lookup over the given entries.
func NewCategoryLookup(categories []Category) *CategoryLookup {
	return &CategoryLookup{categories: categories}
}

// DefaultCategories is the built-in taxonomy used when no database backs
// the lookup.
func DefaultCategories() []Category {
	return []Category{
		{ID: "engineering", Name: "Engineering", Keywords: []string{"engineer", "developer", "software", "backend", "frontend", "devops", "sre"}},
		{ID: "data", Name: "Data", Keywords: []string{"data scientist", "analytics", "machine learning", "data engineer"}},
		{ID: "design", Name: "Design", Keywords: []string{"designer", "ux", "ui"}},
		{ID: "product", Name: "Product", Keywords: []string{"product manager", "product owner"}},
		{ID: "marketing", Name: "Marketing", Keywords: []string{"marketing", "growth", "seo"}},
		{ID: "sales", Name: "Sales", Keywords: []string{"sales", "account executive", "business development"}},
		{ID: "support", Name: "Support", Keywords: []string{"support", "customer success"}},
		{ID: "operations", Name: "Operations", Keywords: []string{"operations", "finance", "recruiter", "people"}},
	}
}

// FindByNameOrKeyword returns the first category whose name or any keyword
// occurs in the text, case-insensitive.
func (l *CategoryLookup) FindByNameOrKeyword(_ context.Context, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, c := range l.categories {
		if strings.Contains(lower, strings.ToLower(c.Name)) {
			return c.ID, true
		}
		for _, kw := range c.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return c.ID, true
			}
		}
	}
	return "", false
}
