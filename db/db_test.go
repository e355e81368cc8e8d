package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"brandpulse/db"
	"brandpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (string, *db.Writer, *db.Reader) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, db.Migrate(path))

	writer := db.NewWriter(path, make(chan interface{}))
	reader := db.NewReader(path)
	t.Cleanup(func() {
		writer.Close()
		reader.Close()
	})
	return path, writer, reader
}

func scoredPost(text string, createdAt time.Time, score float64, label models.Label) models.ScoredPost {
	return models.ScoredPost{
		RawPost: models.RawPost{
			Text:      text,
			CreatedAt: createdAt,
			Author:    "tester",
			Likes:     3,
			Reposts:   1,
		},
		Score: score,
		Label: label,
	}
}

func TestSaveAndGetPosts(t *testing.T) {
	_, writer, reader := newTestDB(t)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, writer.SavePosts("tesla", []models.ScoredPost{
		scoredPost("older post", base, 0.5, models.Positive),
		scoredPost("newer post", base.Add(time.Hour), -0.2, models.Negative),
	}))
	require.NoError(t, writer.SavePosts("other", []models.ScoredPost{
		scoredPost("other brand", base, 0.0, models.Neutral),
	}))

	posts, err := reader.GetPosts("tesla", time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Newest first
	assert.Equal(t, "newer post", posts[0].Text)
	assert.Equal(t, models.Negative, posts[0].Label)
	assert.InDelta(t, -0.2, posts[0].Score, 1e-9)
	assert.Equal(t, base.Add(time.Hour), posts[0].CreatedAt)
	assert.Equal(t, "tester", posts[0].Author)
	assert.Equal(t, 3, posts[0].Likes)
}

func TestGetPostsSinceAndLimit(t *testing.T) {
	_, writer, reader := newTestDB(t)

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var posts []models.ScoredPost
	for i := 0; i < 5; i++ {
		posts = append(posts, scoredPost("post", base.Add(time.Duration(i)*time.Hour), 0.1, models.Positive))
	}
	require.NoError(t, writer.SavePosts("tesla", posts))

	since, err := reader.GetPosts("tesla", base.Add(3*time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, since, 2)

	limited, err := reader.GetPosts("tesla", time.Time{}, 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestGetSentimentPerTimeDay(t *testing.T) {
	_, writer, reader := newTestDB(t)

	day1 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, writer.SavePosts("tesla", []models.ScoredPost{
		scoredPost("a", day1, 0.5, models.Positive),
		scoredPost("b", day1.Add(time.Hour), 0.6, models.Positive),
		scoredPost("c", day1.Add(2*time.Hour), -0.5, models.Negative),
		scoredPost("d", day2, 0.0, models.Neutral),
	}))

	buckets, err := reader.GetSentimentPerTime("tesla", "day")
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), buckets[0].Time)
	assert.Equal(t, int64(2), buckets[0].Positive)
	assert.Equal(t, int64(1), buckets[0].Negative)
	assert.Equal(t, int64(0), buckets[0].Neutral)

	assert.Equal(t, int64(1), buckets[1].Neutral)
}

func TestGetLatestPostTime(t *testing.T) {
	_, writer, reader := newTestDB(t)

	latest, err := reader.GetLatestPostTime("tesla")
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	newest := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, writer.SavePosts("tesla", []models.ScoredPost{
		scoredPost("a", newest.Add(-time.Hour), 0.1, models.Positive),
		scoredPost("b", newest, 0.2, models.Positive),
	}))

	latest, err = reader.GetLatestPostTime("tesla")
	require.NoError(t, err)
	assert.Equal(t, newest, latest)
}

func TestTidy(t *testing.T) {
	path, writer, reader := newTestDB(t)

	require.NoError(t, writer.SavePosts("tesla", []models.ScoredPost{
		scoredPost("ancient", time.Now().UTC().Add(-120*24*time.Hour), 0.1, models.Positive),
		scoredPost("recent", time.Now().UTC().Add(-time.Hour), 0.1, models.Positive),
	}))

	require.NoError(t, db.Tidy(path))

	posts, err := reader.GetPosts("tesla", time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "recent", posts[0].Text)
}
