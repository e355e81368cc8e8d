package acquire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"brandpulse/models"

	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/xrpc"
	"github.com/labstack/gommon/log"
)

// DefaultAppViewHost serves app.bsky.feed.searchPosts without authentication.
const DefaultAppViewHost = "https://public.api.bsky.app"

// searchPageSize is the per-request cap of the searchPosts endpoint.
const searchPageSize = 100

// BlueskySource fetches real posts matching the query from the Bluesky
// appview search index.
type BlueskySource struct {
	xrpc *xrpc.Client
	lang string
}

func NewBlueskySource(host string) *BlueskySource {
	if host == "" {
		host = DefaultAppViewHost
	}
	return &BlueskySource{
		xrpc: &xrpc.Client{
			Host:   host,
			Client: http.DefaultClient,
		},
		// The sentiment lexicons are English; restrict search accordingly.
		lang: "en",
	}
}

// Fetch pages through search results until limit posts are collected or the
// cursor runs out. Posts with empty text are dropped before they reach the
// scorer.
func (s *BlueskySource) Fetch(ctx context.Context, query string, limit int) ([]models.RawPost, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	var posts []models.RawPost
	cursor := ""

	for len(posts) < limit {
		pageSize := int64(limit - len(posts))
		if pageSize > searchPageSize {
			pageSize = searchPageSize
		}

		resp, err := bsky.FeedSearchPosts(ctx, s.xrpc, "", cursor, "", s.lang, pageSize, "", query, "", "latest", nil, "", "")
		if err != nil {
			return nil, fmt.Errorf("searchPosts failed: %w", err)
		}

		for _, view := range resp.Posts {
			post, ok := rawPostFromView(view)
			if !ok {
				continue
			}
			posts = append(posts, post)
		}

		if resp.Cursor == nil || *resp.Cursor == "" || len(resp.Posts) == 0 {
			break
		}
		cursor = *resp.Cursor
	}

	if len(posts) == 0 {
		return nil, ErrNoPosts
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// rawPostFromView maps an appview post to a RawPost, resolving optional
// fields to defaults here rather than at every access site.
func rawPostFromView(view *bsky.FeedDefs_PostView) (models.RawPost, bool) {
	record, ok := view.Record.Val.(*bsky.FeedPost)
	if !ok || record.Text == "" {
		return models.RawPost{}, false
	}

	createdAt, err := time.Parse(time.RFC3339, record.CreatedAt)
	if err != nil {
		// Fall back to the appview indexing time for records with odd
		// client-supplied timestamps.
		createdAt, err = time.Parse(time.RFC3339, view.IndexedAt)
		if err != nil {
			log.Warnf("skipping post with unparseable timestamps: %s", view.Uri)
			return models.RawPost{}, false
		}
	}

	author := ""
	if view.Author != nil {
		author = view.Author.Handle
	}

	var likes, reposts int
	if view.LikeCount != nil {
		likes = int(*view.LikeCount)
	}
	if view.RepostCount != nil {
		reposts = int(*view.RepostCount)
	}

	return models.RawPost{
		Text:      record.Text,
		CreatedAt: createdAt,
		Author:    author,
		Likes:     likes,
		Reposts:   reposts,
	}, true
}
