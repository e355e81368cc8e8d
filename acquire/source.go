// Package acquire supplies raw posts to the analysis pipeline. The core
// treats every source as a black box returning a finite, already-materialized
// batch; retries and rate limiting live inside the source, never in the core.
package acquire

import (
	"context"
	"errors"

	"brandpulse/models"
)

// ErrNoPosts signals that acquisition produced nothing for the query.
// Surfaced to the user as "no results, try a different term" and never
// retried by the caller.
var ErrNoPosts = errors.New("no posts found for query")

// DefaultFetchLimit is used when a caller passes a non-positive limit.
const DefaultFetchLimit = 100

// Source fetches posts about a query. Implementations must return only
// posts with non-empty text.
type Source interface {
	Fetch(ctx context.Context, query string, limit int) ([]models.RawPost, error)
}
