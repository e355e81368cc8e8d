package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"brandpulse/brands"
	"brandpulse/collector"
	"brandpulse/config"
	"brandpulse/db"
	"brandpulse/models"
	"brandpulse/report"
	"brandpulse/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// reportInterval is how often fresh per-brand reports are pushed to SSE
// clients.
const reportInterval = 30 * time.Second

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the brandpulse dashboard API",
		Description: `Starts the brandpulse HTTP server and firehose collector.

		Launches the HTTP server on the specified or default port and subscribes
		to the Bluesky Jetstream firehose. Posts mentioning a configured brand
		are scored and written to the SQLite database. Reports, timelines and a
		live SSE stream are available over the HTTP API.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "pulse.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"BRANDPULSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "brands.toml",
				Usage:   "Path to brands configuration file",
				EnvVars: []string{"BRANDPULSE_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"BRANDPULSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "source",
				Value:   "bluesky",
				Usage:   "Post source for the analyze endpoint (bluesky or synthetic)",
				EnvVars: []string{"BRANDPULSE_SOURCE"},
			},
			&cli.Int64Flag{
				Name:    "seed",
				Value:   1,
				Usage:   "Random seed for the synthetic source",
				EnvVars: []string{"BRANDPULSE_SEED"},
			},
		},
		Action: func(ctx *cli.Context) error {
			fmt.Println("Starting brandpulse...")

			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}

			compiled, err := brands.InitializeBrands(cfg)
			if err != nil {
				return err
			}

			database := ctx.String("database")
			if err := db.Migrate(database); err != nil {
				return err
			}

			source, err := newSource(ctx.String("source"), ctx.Int64("seed"))
			if err != nil {
				return err
			}

			// Channel for scored posts from the collector
			postChan := make(chan interface{}, 1000)
			// Channel feeding the single database writer
			writerChan := make(chan interface{}, 1000)

			writer := db.NewWriter(database, writerChan)
			reader := db.NewReader(database)
			bc := server.NewBroadcaster()

			collectorCtx, cancel := context.WithCancel(ctx.Context)
			defer cancel()

			go writer.Subscribe()

			// Fan scored posts out to both the writer and SSE clients
			go func() {
				for event := range postChan {
					if scored, ok := event.(models.ScoredPostEvent); ok {
						writerChan <- scored
						bc.BroadcastScoredPost(scored)
					}
				}
			}()

			// Push fresh reports to SSE clients at a fixed cadence
			go func() {
				ticker := time.NewTicker(reportInterval)
				defer ticker.Stop()
				for {
					select {
					case <-collectorCtx.Done():
						return
					case <-ticker.C:
						broadcastReports(reader, compiled, bc)
					}
				}
			}()

			app := server.Server(&server.ServerConfig{
				Reader:      reader,
				Broadcaster: bc,
				Brands:      brands.ById(compiled),
				Source:      source,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			var wg sync.WaitGroup

			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				cancel()
				app.ShutdownWithTimeout(60 * time.Second)
				bc.Shutdown()
				defer wg.Add(-2) // Decrement the waitgroup counter by 2 after shutdown of server and collector
			}()

			go func() {
				fmt.Println("Subscribing to firehose...")
				if err := collector.Subscribe(collectorCtx, collector.Config{
					Brands:    compiled,
					Hosts:     cfg.Collector.Hosts,
					Compress:  cfg.Collector.Compress,
					Workers:   cfg.Collector.Workers,
					UserAgent: "brandpulse",
				}, reader, postChan); err != nil {
					log.Panic(err)
				}
			}()

			go func() {
				fmt.Println("Starting server...")
				if err := app.Listen(fmt.Sprintf(":%d", ctx.Int("port"))); err != nil {
					log.Panic(err)
				}
			}()

			// Wait for both the server and collector to shutdown
			wg.Add(2)
			wg.Wait()

			fmt.Println("Done!")
			return nil
		},
	}
}

func broadcastReports(reader *db.Reader, compiled []*brands.Brand, bc *server.Broadcaster) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	for _, brand := range compiled {
		posts, err := reader.GetPosts(brand.Id, since, 1000)
		if err != nil {
			log.WithFields(log.Fields{
				"brand": brand.Id,
				"error": err,
			}).Error("Error reading posts for report broadcast")
			continue
		}

		result, err := report.Build(posts)
		if err != nil {
			// Nothing stored for this brand yet
			continue
		}

		bc.BroadcastReport(models.ReportEvent{
			Brand:  brand.Id,
			Report: result,
		})
	}
}
