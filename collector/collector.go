// Package collector subscribes to the Bluesky Jetstream firehose, scores
// every post that mentions a tracked brand and emits scored post events for
// storage and live dashboard streaming.
package collector

import (
	"context"
	"time"

	"brandpulse/brands"
	"brandpulse/db"

	log "github.com/sirupsen/logrus"
)

const (
	defaultWorkers = 4
	maxQueueSize   = 1000
)

// DefaultHosts are the public Jetstream endpoints, tried in order
var DefaultHosts = []string{
	"wss://jetstream1.us-east.bsky.network",
	"wss://jetstream2.us-east.bsky.network",
	"wss://jetstream1.us-west.bsky.network",
	"wss://jetstream2.us-west.bsky.network",
}

// Config holds configuration for the firehose collector
type Config struct {
	Brands    []*brands.Brand
	Hosts     []string
	Compress  bool
	Workers   int
	UserAgent string
}

// Subscribe resumes from just before the newest stored post and keeps
// scoring firehose posts until the context is cancelled. Scored posts are
// sent on postChan.
func Subscribe(ctx context.Context, config Config, reader *db.Reader, postChan chan interface{}) error {
	if len(config.Hosts) == 0 {
		config.Hosts = DefaultHosts
	}

	var latest time.Time
	for _, brand := range config.Brands {
		brandLatest, err := reader.GetLatestPostTime(brand.Id)
		if err != nil {
			log.Errorf("Failed to get latest post time for %s: %v", brand.Id, err)
			continue
		}
		if brandLatest.After(latest) {
			latest = brandLatest
		}
	}

	// If we have stored posts, start 10 seconds before the newest one
	var cursor int64
	if !latest.IsZero() {
		cursor = latest.Add(-10 * time.Second).UnixMicro()
	}

	workers := config.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	pp := NewParallelProcessor(ctx, workers, maxQueueSize, config, postChan)

	if err := subscribeJetstream(ctx, JetstreamConfig{
		Hosts:             config.Hosts,
		Compress:          config.Compress,
		UserAgent:         config.UserAgent,
		WantedCollections: []string{"app.bsky.feed.post"},
		Cursor:            cursor,
	}, pp.workerQueue); err != nil {
		return err
	}

	pp.start()
	return nil
}
