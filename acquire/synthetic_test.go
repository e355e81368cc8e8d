package acquire_test

import (
	"context"
	"testing"

	"brandpulse/acquire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticFetchDeterministic(t *testing.T) {
	ctx := context.Background()

	first, err := acquire.NewSyntheticSource(42).Fetch(ctx, "Tesla", 50)
	require.NoError(t, err)
	second, err := acquire.NewSyntheticSource(42).Fetch(ctx, "Tesla", 50)
	require.NoError(t, err)

	require.Len(t, first, 50)
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Author, second[i].Author)
		assert.Equal(t, first[i].Likes, second[i].Likes)
	}
}

func TestSyntheticFetchQueryChangesOutput(t *testing.T) {
	ctx := context.Background()
	source := acquire.NewSyntheticSource(42)

	tesla, err := source.Fetch(ctx, "Tesla", 20)
	require.NoError(t, err)
	coffee, err := source.Fetch(ctx, "Coffee", 20)
	require.NoError(t, err)

	assert.NotEqual(t, tesla[0].Text, coffee[0].Text)
}

func TestSyntheticFetchEmptyQuery(t *testing.T) {
	source := acquire.NewSyntheticSource(1)

	posts, err := source.Fetch(context.Background(), "   ", 10)
	assert.Nil(t, posts)
	assert.ErrorIs(t, err, acquire.ErrNoPosts)
}

func TestSyntheticFetchNonEmptyText(t *testing.T) {
	source := acquire.NewSyntheticSource(7)

	posts, err := source.Fetch(context.Background(), "ExampleBrand", 100)
	require.NoError(t, err)
	require.Len(t, posts, 100)

	for _, post := range posts {
		assert.NotEmpty(t, post.Text)
		assert.NotEmpty(t, post.Author)
		assert.False(t, post.CreatedAt.IsZero())
		assert.GreaterOrEqual(t, post.Likes, 0)
		assert.GreaterOrEqual(t, post.Reposts, 0)
	}
}
