package search

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *UserIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { writer.Close() })

	return NewUserIndex(writer, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_Search_Matches_Prefix(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	// Given three indexed users
	req.NoError(index.Index("u1", "alice"))
	req.NoError(index.Index("u2", "alicia"))
	req.NoError(index.Index("u3", "bob"))

	// When searching a partial name
	hits, err := index.Search(context.Background(), "ali", 10)
	req.NoError(err)

	// Then both al* users match and bob does not
	req.Len(hits, 2)
	found := map[string]string{}
	for _, hit := range hits {
		found[hit.ID] = hit.Username
	}
	req.Equal(map[string]string{"u1": "alice", "u2": "alicia"}, found)
}

func Test_Search_Matches_Exact_Name(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.Index("u1", "alice"))
	req.NoError(index.Index("u3", "bob"))

	hits, err := index.Search(context.Background(), "bob", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("u3", hits[0].ID)
	req.Equal("bob", hits[0].Username)
}

func Test_Search_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.Index("u1", "alice"))

	hits, err := index.Search(context.Background(), "  ALI ", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("alice", hits[0].Username)
}

func Test_Search_Empty_Term_Returns_Nothing(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.Index("u1", "alice"))

	hits, err := index.Search(context.Background(), "   ", 10)
	req.NoError(err)
	req.Empty(hits)
}

func Test_Index_Update_Replaces_The_Document(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	// Given a user indexed under their old name
	req.NoError(index.Index("u1", "alice"))

	// When the username changes
	req.NoError(index.Index("u1", "wonderland"))

	// Then only the new name matches
	hits, err := index.Search(context.Background(), "alice", 10)
	req.NoError(err)
	req.Empty(hits)

	hits, err = index.Search(context.Background(), "wonder", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("u1", hits[0].ID)
}

func Test_Deindex_Removes_The_Document(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.Index("u1", "alice"))
	req.NoError(index.Deindex("u1"))

	hits, err := index.Search(context.Background(), "alice", 10)
	req.NoError(err)
	req.Empty(hits)
}
