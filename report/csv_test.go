package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"brandpulse/models"
	"brandpulse/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	posts := []models.ScoredPost{
		{
			RawPost: models.RawPost{
				Text:      "love it, even with a \"quote\"",
				CreatedAt: createdAt,
				Author:    "alice",
				Likes:     12,
				Reposts:   3,
			},
			Score: 0.75,
			Label: models.Positive,
		},
		{
			RawPost: models.RawPost{
				Text:      "utterly broken",
				CreatedAt: createdAt.Add(24 * time.Hour),
				Author:    "bob",
			},
			Score: -0.5,
			Label: models.Negative,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, posts))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"text", "sentiment_score", "sentiment", "date", "likes", "retweets", "username"}, records[0])
	assert.Equal(t, []string{"love it, even with a \"quote\"", "0.750", "Positive", "2024-06-01T10:30:00Z", "12", "3", "alice"}, records[1])
	assert.Equal(t, []string{"utterly broken", "-0.500", "Negative", "2024-06-02T10:30:00Z", "0", "0", "bob"}, records[2])
}

func TestWriteCSVNoPosts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}
