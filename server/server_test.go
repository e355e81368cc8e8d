package server_test

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"brandpulse/acquire"
	"brandpulse/brands"
	"brandpulse/config"
	"brandpulse/db"
	"brandpulse/models"
	"brandpulse/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, db.Migrate(path))

	writer := db.NewWriter(path, make(chan interface{}))
	reader := db.NewReader(path)
	t.Cleanup(func() {
		writer.Close()
		reader.Close()
	})

	base := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, writer.SavePosts("tesla", []models.ScoredPost{
		{
			RawPost: models.RawPost{Text: "love the new tesla update #tesla", CreatedAt: base, Author: "alice", Likes: 10},
			Score:   0.8,
			Label:   models.Positive,
		},
		{
			RawPost: models.RawPost{Text: "my tesla broke down again", CreatedAt: base.Add(time.Minute), Author: "bob"},
			Score:   -0.6,
			Label:   models.Negative,
		},
		{
			RawPost: models.RawPost{Text: "saw a tesla on the highway", CreatedAt: base.Add(2 * time.Minute), Author: "carol"},
			Score:   0.0,
			Label:   models.Neutral,
		},
	}))

	compiled, err := brands.InitializeBrands(&config.TomlConfig{
		Brands: []config.TomlBrand{
			{Id: "tesla", DisplayName: "Tesla", Query: []string{"tesla"}},
			{Id: "empty", DisplayName: "Empty", Query: []string{"empty"}},
		},
	})
	require.NoError(t, err)

	return server.Server(&server.ServerConfig{
		Reader:      reader,
		Broadcaster: server.NewBroadcaster(),
		Brands:      brands.ById(compiled),
		Source:      acquire.NewSyntheticSource(42),
	})
}

func TestHealth(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAnalyze(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest("POST", "/analyze", strings.NewReader(`{"query": "Tesla", "limit": 30}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result struct {
		Query  string                  `json:"query"`
		Report *models.SentimentReport `json:"report"`
		Posts  []models.ScoredPost     `json:"posts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, "Tesla", result.Query)
	require.NotNil(t, result.Report)
	assert.Equal(t, 30, result.Report.TotalCount)
	assert.Len(t, result.Posts, 30)
	assert.InDelta(t, 100.0, result.Report.PositivePct+result.Report.NeutralPct+result.Report.NegativePct, 0.5)
}

func TestAnalyzeMissingQuery(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest("POST", "/analyze", strings.NewReader(`{"limit": 10}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestBrandReport(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/brands/tesla/report", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result models.SentimentReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 1, result.PositiveCount)
	assert.Equal(t, 1, result.NegativeCount)
	assert.Equal(t, 1, result.NeutralCount)
	assert.Equal(t, []models.HashtagCount{{Tag: "#tesla", Count: 1}}, result.TrendingTags)
}

func TestBrandReportUnknownBrand(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/brands/nope/report", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestBrandReportNoPosts(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/brands/empty/report", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestBrandTimeline(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/brands/tesla/timeline?time=day", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var buckets []models.SentimentPerTime
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&buckets))
	require.NotEmpty(t, buckets)

	var positive, neutral, negative int64
	for _, bucket := range buckets {
		positive += bucket.Positive
		neutral += bucket.Neutral
		negative += bucket.Negative
	}
	assert.Equal(t, int64(1), positive)
	assert.Equal(t, int64(1), neutral)
	assert.Equal(t, int64(1), negative)
}

func TestBrandTimelineInvalidAggregation(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/brands/tesla/timeline?time=month", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestBrandExportCSV(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/brands/tesla/export.csv", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "tesla-sentiment.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header plus three posts
	assert.Equal(t, []string{"text", "sentiment_score", "sentiment", "date", "likes", "retweets", "username"}, records[0])
}

func TestListBrands(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/brands", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var infos []struct {
		Id          string `json:"id"`
		DisplayName string `json:"display_name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	assert.Len(t, infos, 2)
}
