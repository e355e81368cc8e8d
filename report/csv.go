package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"brandpulse/models"
)

// csvHeader matches the column layout of the dashboard's CSV download.
var csvHeader = []string{"text", "sentiment_score", "sentiment", "date", "likes", "retweets", "username"}

// WriteCSV writes one UTF-8 record per scored post, header row first.
// Scores are rendered with three decimals, dates as RFC 3339 in UTC.
func WriteCSV(w io.Writer, posts []models.ScoredPost) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, post := range posts {
		record := []string{
			post.Text,
			strconv.FormatFloat(post.Score, 'f', 3, 64),
			string(post.Label),
			post.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(post.Likes),
			strconv.Itoa(post.Reposts),
			post.Author,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
