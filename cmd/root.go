package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "brandpulse",
		Usage: "Brand sentiment tracking for Bluesky posts",
		Description: `Tracks what people post about configured brands and how they
		feel about them.

		Brandpulse works by subscribing to the Bluesky Jetstream firehose and
		matching posts against the configured brand queries. Each matching post
		is scored with two sentiment models whose outputs are fused into a
		single score and label. Results are written to an SQLite database and
		served via an HTTP API with a live SSE stream.

		Flags can generally be set via environment variables, e.g.:

		--database => BRANDPULSE_DATABASE=pulse.db
		--port => BRANDPULSE_PORT=8080
		`,
		Commands: []*cli.Command{
			serveCmd(),
			analyzeCmd(),
			collectCmd(),
			migrateCmd(),
			rollbackCmd(),
			tidyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
