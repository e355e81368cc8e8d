package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"brandpulse/acquire"
	"brandpulse/brands"
	"brandpulse/db"
	"brandpulse/models"
	"brandpulse/report"
	"brandpulse/sentiment"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type ServerConfig struct {

	// The reader to use for reading stored posts
	Reader *db.Reader

	// Broadcast channels to pass scored posts and reports to SSE clients
	Broadcaster *Broadcaster

	// Brands served by the dashboard endpoints
	Brands map[string]*brands.Brand

	// Source used by the ad hoc analyze endpoint
	Source acquire.Source
}

// Make it sync
type Broadcaster struct {
	sync.RWMutex
	scoredPostClients map[string]chan models.ScoredPostEvent
	reportClients     map[string]chan models.ReportEvent
}

// Constructor
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		scoredPostClients: make(map[string]chan models.ScoredPostEvent, 10000),
		reportClients:     make(map[string]chan models.ReportEvent, 10000),
	}
}

func (b *Broadcaster) BroadcastScoredPost(event models.ScoredPostEvent) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.scoredPostClients {
		select {
		case client <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping post for client: %v", id)
		}
	}
}

func (b *Broadcaster) BroadcastReport(event models.ReportEvent) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.reportClients {
		select {
		case client <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping report for client: %v", id)
		}
	}
}

// Function to add a client to the broadcaster
func (b *Broadcaster) AddClient(key string, scoredPostClient chan models.ScoredPostEvent, reportClient chan models.ReportEvent) {
	b.Lock()
	defer b.Unlock()
	b.scoredPostClients[key] = scoredPostClient
	b.reportClients[key] = reportClient
	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.scoredPostClients),
	}).Info("Adding client to broadcaster")
}

// Function to remove a client from the broadcaster
func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.scoredPostClients[key]; ok {
		close(client)
		delete(b.scoredPostClients, key)
	}

	if client, ok := b.reportClients[key]; ok {
		close(client)
		delete(b.reportClients, key)
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.scoredPostClients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for key, client := range b.scoredPostClients {
		close(client)
		delete(b.scoredPostClients, key)
	}
	for key, client := range b.reportClients {
		close(client)
		delete(b.reportClients, key)
	}
}

type analyzeRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type analyzeResponse struct {
	Query  string                  `json:"query"`
	Report *models.SentimentReport `json:"report"`
	Posts  []models.ScoredPost     `json:"posts"`
}

// Returns a fiber.App instance serving the dashboard and analysis API
func Server(config *ServerConfig) *fiber.App {

	bc := config.Broadcaster
	scorer := sentiment.DefaultScorer()

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		// Diff
		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	app.Use(cors.New(cors.Config{
		AllowHeaders: "Cache-Control, Content-Type",
	}))

	// Cache brand reports and timelines briefly; never the SSE stream
	app.Use(cache.New(cache.Config{
		Expiration: 30 * time.Second,
		Next: func(c *fiber.Ctx) bool {

			if c.Method() != "GET" {
				return true
			}

			if strings.HasSuffix(c.Path(), "/sse") {
				return true
			}

			if strings.HasPrefix(c.Path(), "/brands/") {
				return false
			}
			return true
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			// Include the query parameters in the cache key
			return c.Request().URI().String()
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	// Ad hoc analysis: fetch posts for any query, score them and build a
	// report without storing anything
	app.Post("/analyze", func(c *fiber.Ctx) error {
		var req analyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		if strings.TrimSpace(req.Query) == "" {
			return c.Status(400).JSON(fiber.Map{"error": "query is required"})
		}

		raw, err := config.Source.Fetch(c.Context(), req.Query, req.Limit)
		if err != nil {
			if errors.Is(err, acquire.ErrNoPosts) {
				return c.Status(404).JSON(fiber.Map{"error": "no posts found, try a different term"})
			}
			log.WithFields(log.Fields{
				"query": req.Query,
				"error": err,
			}).Error("Error fetching posts")
			return c.Status(502).JSON(fiber.Map{"error": "could not fetch posts"})
		}

		scored := scorer.ScorePosts(raw)
		result, err := report.Build(scored)
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "no posts found, try a different term"})
		}

		return c.JSON(analyzeResponse{
			Query:  req.Query,
			Report: result,
			Posts:  scored,
		})
	})

	app.Get("/brands", func(c *fiber.Ctx) error {
		type brandInfo struct {
			Id          string   `json:"id"`
			DisplayName string   `json:"display_name"`
			Query       []string `json:"query"`
		}

		infos := make([]brandInfo, 0, len(config.Brands))
		for _, brand := range config.Brands {
			infos = append(infos, brandInfo{
				Id:          brand.Id,
				DisplayName: brand.DisplayName,
				Query:       brand.Query,
			})
		}
		return c.JSON(infos)
	})

	app.Get("/brands/:id/report", func(c *fiber.Ctx) error {
		brand, ok := config.Brands[c.Params("id")]
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "unknown brand"})
		}

		posts, err := storedPosts(config.Reader, brand.Id, c)
		if err != nil {
			log.WithFields(log.Fields{
				"brand": brand.Id,
				"error": err,
			}).Error("Error reading posts")
			return c.Status(500).JSON(fiber.Map{"error": "could not read posts"})
		}

		result, err := report.Build(posts)
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "no posts stored for brand yet"})
		}

		return c.JSON(result)
	})

	app.Get("/brands/:id/timeline", func(c *fiber.Ctx) error {
		brand, ok := config.Brands[c.Params("id")]
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "unknown brand"})
		}

		timeAgg := c.Query("time", "hour")
		if timeAgg != "hour" && timeAgg != "day" && timeAgg != "week" {
			return c.Status(400).JSON(fiber.Map{"error": "time must be hour, day or week"})
		}

		buckets, err := config.Reader.GetSentimentPerTime(brand.Id, timeAgg)
		if err != nil {
			log.WithFields(log.Fields{
				"brand": brand.Id,
				"error": err,
			}).Error("Error getting sentiment per time")
			return c.Status(500).JSON(fiber.Map{"error": "could not read timeline"})
		}

		if buckets == nil {
			buckets = []models.SentimentPerTime{}
		}
		return c.JSON(buckets)
	})

	app.Get("/brands/:id/export.csv", func(c *fiber.Ctx) error {
		brand, ok := config.Brands[c.Params("id")]
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "unknown brand"})
		}

		posts, err := storedPosts(config.Reader, brand.Id, c)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "could not read posts"})
		}

		c.Set("Content-Type", "text/csv; charset=utf-8")
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-sentiment.csv", brand.Id))

		var buf strings.Builder
		if err := report.WriteCSV(&buf, posts); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "could not write csv"})
		}
		return c.SendString(buf.String())
	})

	app.Delete("/dashboard/sse", func(c *fiber.Ctx) error {
		key := c.Query("key", "")
		bc.RemoveClient(key)
		return c.Status(200).SendString("OK")
	})

	app.Get("/dashboard/sse", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		// Unique client key
		key := uuid.New().String()
		ssePostChannel := make(chan models.ScoredPostEvent, 10) // Buffered channel
		sseReportChannel := make(chan models.ReportEvent, 10)
		aliveChan := time.NewTicker(5 * time.Second)

		defer aliveChan.Stop()

		// Register the client
		bc.AddClient(key, ssePostChannel, sseReportChannel)

		// Cleanup function
		cleanup := func() {
			log.Infof("Cleaning up SSE stream for client: %s", key)
			bc.RemoveClient(key)
		}

		// Use StreamWriter to manage SSE streaming
		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cleanup()

			// Send initial event with client key
			fmt.Fprintf(w, "event: init\ndata: %s\n\n", key)
			if err := w.Flush(); err != nil {
				log.Errorf("Failed to send init event: %v", err)
				return
			}

			// Start streaming loop
			for {
				select {
				case <-aliveChan.C:
					// Send keep-alive pings
					if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
						log.Warnf("Failed to send ping to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush ping for client %s: %v", key, err)
						return
					}

				case event, ok := <-ssePostChannel:
					if !ok {
						log.Warnf("Post channel closed for client %s", key)
						return
					}
					jsonEvent, err := json.Marshal(event)
					if err != nil {
						log.Errorf("Error marshalling post for client %s: %v", key, err)
						continue
					}
					if _, err := fmt.Fprintf(w, "event: scored-post\ndata: %s\n\n", jsonEvent); err != nil {
						log.Warnf("Failed to send scored-post event to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush scored-post event for client %s: %v", key, err)
						return
					}

				case event, ok := <-sseReportChannel:
					if !ok {
						log.Warnf("Report channel closed for client %s", key)
						return
					}
					jsonEvent, err := json.Marshal(event)
					if err != nil {
						log.Errorf("Error marshalling report for client %s: %v", key, err)
						continue
					}
					if _, err := fmt.Fprintf(w, "event: report\ndata: %s\n\n", jsonEvent); err != nil {
						log.Warnf("Failed to send report event to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush report event for client %s: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	})

	return app
}

// storedPosts reads the newest stored posts for a brand using the shared
// window and limit query parameters.
func storedPosts(reader *db.Reader, brand string, c *fiber.Ctx) ([]models.ScoredPost, error) {
	limit := c.QueryInt("limit", 500)
	if limit < 1 || limit > 10000 {
		limit = 500
	}

	var since time.Time
	if window := c.Query("window", ""); window != "" {
		d, err := time.ParseDuration(window)
		if err == nil && d > 0 {
			since = time.Now().UTC().Add(-d)
		}
	}

	return reader.GetPosts(brand, since, limit)
}
