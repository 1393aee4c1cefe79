package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newMockLookup(t *testing.T) *CategoryLookup {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectQuery("SELECT id, name, keywords FROM job_categories").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "keywords"}).
			AddRow("data", "Data", []string{"analytics", "machine learning"}).
			AddRow("engineering", "Engineering", []string{"engineer", "developer"}))

	lookup, err := NewCategoryLookup(context.Background(), mock)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	return lookup
}

func TestCategoryLookupMatchesName(t *testing.T) {
	t.Parallel()

	lookup := newMockLookup(t)
	id, ok := lookup.FindByNameOrKeyword(context.Background(), "Head of Engineering")
	require.True(t, ok)
	require.Equal(t, "engineering", id)
}

func TestCategoryLookupMatchesKeyword(t *testing.T) {
	t.Parallel()

	lookup := newMockLookup(t)
	id, ok := lookup.FindByNameOrKeyword(context.Background(), "Senior Machine Learning Researcher")
	require.True(t, ok)
	require.Equal(t, "data", id)
}

func TestCategoryLookupNoMatch(t *testing.T) {
	t.Parallel()

	lookup := newMockLookup(t)
	_, ok := lookup.FindByNameOrKeyword(context.Background(), "Office Manager")
	require.False(t, ok)
}
