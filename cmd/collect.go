package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"brandpulse/brands"
	"brandpulse/collector"
	"brandpulse/config"
	"brandpulse/db"
	"brandpulse/models"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Collect and score brand posts without serving HTTP",
		Description: `Subscribe to the Bluesky Jetstream firehose and store every
		scored post that mentions a configured brand.

		Useful for backfilling a database before starting the server, or for
		running the collector on a separate machine. With --stdout each scored
		post is also printed as a JSON object on a single line; use a tool like
		jq to process the output. All other log messages go to stderr.`,
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
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "Also print scored posts to stdout as JSON lines",
			},
		},
		Action: func(ctx *cli.Context) error {
			// Keep stdout clean for the JSON lines
			log.SetOutput(os.Stderr)

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

			postChan := make(chan interface{}, 1000)
			writerChan := make(chan interface{}, 1000)

			writer := db.NewWriter(database, writerChan)
			reader := db.NewReader(database)

			go writer.Subscribe()

			printStdout := ctx.Bool("stdout")
			go func() {
				for event := range postChan {
					scored, ok := event.(models.ScoredPostEvent)
					if !ok {
						continue
					}
					writerChan <- scored
					if printStdout {
						if line, err := json.Marshal(scored); err == nil {
							fmt.Println(string(line))
						}
					}
				}
			}()

			if err := collector.Subscribe(ctx.Context, collector.Config{
				Brands:    compiled,
				Hosts:     cfg.Collector.Hosts,
				Compress:  cfg.Collector.Compress,
				Workers:   cfg.Collector.Workers,
				UserAgent: "brandpulse",
			}, reader, postChan); err != nil {
				return err
			}

			// Block until interrupted
			<-ctx.Context.Done()
			return nil
		},
	}
}
