package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutObjectAndGet(t *testing.T) {
	t.Parallel()

	store := New()
	uri, err := store.PutObject(context.Background(), "raw/boardA/1.json", "application/json", []byte(`[]`))
	require.NoError(t, err)
	require.Equal(t, "memory://raw/boardA/1.json", uri)
	require.Equal(t, 1, store.Len())

	data, ok := store.Get("raw/boardA/1.json")
	require.True(t, ok)
	require.Equal(t, `[]`, string(data))
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	store := New()
	_, ok := store.Get("nope")
	require.False(t, ok)
}
