package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"brandpulse/acquire"
	"brandpulse/models"
	"brandpulse/report"
	"brandpulse/sentiment"

	"github.com/cqroot/prompt"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

type analyzeOutput struct {
	Query  string                  `json:"query"`
	Report *models.SentimentReport `json:"report"`
	Posts  []models.ScoredPost     `json:"posts"`
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run a one-shot sentiment analysis for a query",
		Description: `Fetches posts matching a query, scores them and prints a
		sentiment report.

		Prompts for a query when none is given. The report is printed to stdout
		as JSON by default; use --format csv to get the scored posts as CSV
		instead. All log messages go to stderr so the output can be piped to
		jq or a file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Brand or topic to analyze",
				EnvVars: []string{"BRANDPULSE_QUERY"},
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Value:   acquire.DefaultFetchLimit,
				Usage:   "Maximum number of posts to fetch",
				EnvVars: []string{"BRANDPULSE_LIMIT"},
			},
			&cli.StringFlag{
				Name:    "source",
				Value:   "bluesky",
				Usage:   "Post source to use (bluesky or synthetic)",
				EnvVars: []string{"BRANDPULSE_SOURCE"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "json",
				Usage:   "Output format (json or csv)",
				EnvVars: []string{"BRANDPULSE_FORMAT"},
			},
			&cli.Int64Flag{
				Name:    "seed",
				Value:   1,
				Usage:   "Random seed for the synthetic source",
				EnvVars: []string{"BRANDPULSE_SEED"},
			},
		},
		Action: func(ctx *cli.Context) error {
			// Keep stdout clean for the report output
			log.SetOutput(os.Stderr)

			query := ctx.String("query")
			if query == "" {
				var err error
				query, err = prompt.New().Ask("Brand or topic:").Input("Tesla")
				if err != nil {
					return err
				}
			}

			format := ctx.String("format")
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown format %q, expected json or csv", format)
			}

			source, err := newSource(ctx.String("source"), ctx.Int64("seed"))
			if err != nil {
				return err
			}

			raw, err := source.Fetch(ctx.Context, query, ctx.Int("limit"))
			if err != nil {
				return err
			}

			scored := sentiment.DefaultScorer().ScorePosts(raw)
			result, err := report.Build(scored)
			if err != nil {
				return err
			}

			if format == "csv" {
				return report.WriteCSV(os.Stdout, scored)
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(analyzeOutput{
				Query:  query,
				Report: result,
				Posts:  scored,
			})
		},
	}
}

func newSource(name string, seed int64) (acquire.Source, error) {
	switch name {
	case "bluesky":
		return acquire.NewBlueskySource(""), nil
	case "synthetic":
		return acquire.NewSyntheticSource(seed), nil
	default:
		return nil, fmt.Errorf("unknown source %q, expected bluesky or synthetic", name)
	}
}
