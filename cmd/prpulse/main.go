// Package main provides the prpulse command-line tool. It surveys the open
// pull requests of one GitHub repository, renders a readiness report, and
// publishes it to a gist, creating the gist on first run and updating it in
// place afterwards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/codeGROOVE-dev/prpulse/pkg/prpulse"
)

const runTimeout = 5 * time.Minute

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	csvPath := flag.String("csv", "", `Also write the report as CSV to this file ("-" for stdout)`)
	flag.Parse()

	cfg, err := NewConfig()
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	level := cfg.Logging.SlogLevel()
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := run(ctx, cfg, *csvPath); err != nil {
		switch {
		case errors.Is(err, prpulse.ErrSourceUnavailable):
			log.Printf("GitHub source unavailable: %v", err)
		case errors.Is(err, prpulse.ErrMalformedRecord):
			log.Printf("GitHub source returned a malformed record: %v", err)
		case errors.Is(err, prpulse.ErrPublishRejected):
			log.Printf("Gist sink rejected the report: %v", err)
		default:
			log.Printf("Run failed: %v", err)
		}
		cancel()
		os.Exit(1) //nolint:gocritic // False positive: cancel() is called immediately before os.Exit()
	}
	cancel() // Ensure context is cancelled before exit
}

// run executes one full survey-classify-render-publish cycle. Any error
// aborts the run before the report is published.
func run(ctx context.Context, cfg *Config, csvPath string) error {
	client := prpulse.NewClient(cfg.GitHub.Token,
		prpulse.WithLogger(slog.Default()),
		prpulse.WithBaseURL(cfg.GitHub.APIURL),
	)

	snapshot, err := client.Snapshot(ctx, cfg.GitHub.RepoOwner, cfg.GitHub.RepoName)
	if err != nil {
		return err
	}

	report, err := prpulse.BuildReport(snapshot, time.Now())
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "report built",
		"total", report.Summary.Total,
		"no_reviewers", report.Summary.Unassigned,
		"open_over_30_days", report.Summary.Stale,
		"growing_old", report.Summary.Aging)

	if csvPath != "" {
		if err := writeCSV(csvPath, report); err != nil {
			return err
		}
	}

	publisher := prpulse.NewPublisher(cfg.Gist.Token,
		prpulse.WithPublisherLogger(slog.Default()),
		prpulse.WithPublisherBaseURL(cfg.Gist.APIURL),
	)

	result, err := publisher.Publish(ctx, cfg.Gist.ID, report.Title(), report.Markdown())
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "report published",
		"gist_id", result.ID,
		"url", result.HTMLURL,
		"created", result.Created)
	return nil
}

func writeCSV(path string, report *prpulse.Report) error {
	if path == "-" {
		return prpulse.WriteCSV(os.Stdout, report)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	if err := prpulse.WriteCSV(f, report); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing CSV file: %w", err)
	}
	return nil
}
