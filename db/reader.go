package db

import (
	"database/sql"
	"fmt"
	"time"

	"brandpulse/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

type Reader struct {
	db *sql.DB
}

func NewReader(database string) *Reader {
	// Open in read-only mode with optimized settings
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?mode=ro&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", database))
	if err != nil {
		panic("failed to connect database")
	}

	// Set connection pool settings for reader
	db.SetMaxOpenConns(4)            // Allow multiple concurrent readers
	db.SetMaxIdleConns(2)            // Keep some connections ready
	db.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
	db.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour

	// Configure additional pragmas for better read performance
	if _, err := db.Exec(`
		PRAGMA busy_timeout = 5000;
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -32000; -- 32MB cache
		PRAGMA temp_store = MEMORY;
		PRAGMA mmap_size = 268435456; -- 256MB memory mapped I/O
		PRAGMA page_size = 4096;      -- Optimal page size for most systems
		PRAGMA read_uncommitted = 1;   -- Allow dirty reads for better concurrency
	`); err != nil {
		panic(fmt.Sprintf("failed to set pragmas: %v", err))
	}

	return &Reader{
		db: db,
	}
}

// GetPosts returns the newest scored posts for a brand, most recent first.
// A zero since time means no lower bound.
func (reader *Reader) GetPosts(brand string, since time.Time, limit int) ([]models.ScoredPost, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("author", "text", "created_at", "likes", "reposts", "score", "label").From("posts")
	sb.Where(sb.Equal("brand", brand))
	if !since.IsZero() {
		sb.Where(sb.GreaterEqualThan("created_at", since.Unix()))
	}
	sb.OrderBy("created_at").Desc()
	sb.Limit(limit)

	sql, args := sb.BuildWithFlavor(sqlbuilder.Flavor(sqlbuilder.SQLite))

	rows, err := reader.db.Query(sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var posts []models.ScoredPost
	for rows.Next() {
		var post models.ScoredPost
		var createdAt int64
		var label string
		if err := rows.Scan(&post.Author, &post.Text, &createdAt, &post.Likes, &post.Reposts, &post.Score, &label); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		post.CreatedAt = time.Unix(createdAt, 0).UTC()
		post.Label = models.Label(label)
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// GetSentimentPerTime returns per-label post counts for a brand bucketed by
// hour, day or week.
func (reader *Reader) GetSentimentPerTime(brand string, timeAgg string) ([]models.SentimentPerTime, error) {
	var sqlFormat string
	var timeParse func(string) (time.Time, error)

	switch timeAgg {
	case "day":
		sqlFormat = `STRFTIME('%Y-%m-%d', created_at, 'unixepoch')`
		timeParse = func(str string) (time.Time, error) {
			return time.Parse("2006-01-02", str)
		}
	case "week":
		sqlFormat = `STRFTIME('%Y-%W', created_at, 'unixepoch')`
		timeParse = parseYearWeek
	default: // hour
		sqlFormat = `STRFTIME('%Y-%m-%d-%H', created_at, 'unixepoch')`
		timeParse = func(str string) (time.Time, error) {
			return time.Parse("2006-01-02-15", str)
		}
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(
		sqlFormat,
		"SUM(CASE WHEN label = 'Positive' THEN 1 ELSE 0 END) as positive",
		"SUM(CASE WHEN label = 'Neutral' THEN 1 ELSE 0 END) as neutral",
		"SUM(CASE WHEN label = 'Negative' THEN 1 ELSE 0 END) as negative",
	).From("posts")
	sb.Where(sb.Equal("brand", brand))
	sb.GroupBy(sqlFormat)
	sb.OrderBy("created_at").Asc()

	sql, args := sb.BuildWithFlavor(sqlbuilder.Flavor(sqlbuilder.SQLite))

	rows, err := reader.db.Query(sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []models.SentimentPerTime
	for rows.Next() {
		var sqlTime string
		var bucket models.SentimentPerTime

		if err := rows.Scan(&sqlTime, &bucket.Positive, &bucket.Neutral, &bucket.Negative); err != nil {
			continue // Skip this row
		}
		bucketTime, err := timeParse(sqlTime)
		if err == nil {
			bucket.Time = bucketTime
		}
		buckets = append(buckets, bucket)
	}

	return buckets, rows.Err()
}

// GetLatestPostTime returns the created_at of the newest stored post for a
// brand, or the zero time when the brand has no posts yet.
func (reader *Reader) GetLatestPostTime(brand string) (time.Time, error) {
	sb := sqlbuilder.NewSelectBuilder()
	query, args := sb.Select("MAX(created_at)").From("posts").Where(sb.Equal("brand", brand)).Build()

	var latest sql.NullInt64
	if err := reader.db.QueryRow(query, args...).Scan(&latest); err != nil {
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return time.Unix(latest.Int64, 0).UTC(), nil
}

func (reader *Reader) Close() error {
	return reader.db.Close()
}

// parseYearWeek converts SQLite's %Y-%W output back to the first day of
// that week.
func parseYearWeek(str string) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(str, "%d-%d", &year, &week); err != nil {
		return time.Time{}, err
	}
	jan1 := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return jan1.AddDate(0, 0, week*7-int(jan1.Weekday())), nil
}
