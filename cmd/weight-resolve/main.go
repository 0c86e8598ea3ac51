package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/joelkehle/weightfill/internal/browser"
	"github.com/joelkehle/weightfill/internal/dataset"
	"github.com/joelkehle/weightfill/internal/report"
	"github.com/joelkehle/weightfill/internal/resolve"
	"github.com/joelkehle/weightfill/internal/sources"
	"github.com/joelkehle/weightfill/internal/telemetry"
)

func main() {
	input := flag.String("input", "", "Input catalog CSV (required)")
	output := flag.String("output", "products_updated.csv", "Output CSV path; never the input path")
	review := flag.String("review", "not_found_products.csv", "Manual-review CSV path")
	journalPath := flag.String("journal", "", "SQLite run journal path (empty disables)")
	reportPath := flag.String("report", "", "Run-report markdown path (empty disables)")
	adapters := flag.String("adapters", "", "Comma-separated adapter order override, e.g. marketplace,llm")
	parallel := flag.Int("parallel", 1, "Worker count; >1 enables bounded-parallel mode, -1 selects the default width")
	maxAttempts := flag.Int("max-attempts", resolve.DefaultMaxAttempts, "Per-adapter attempt budget for recoverable failures")
	chromePath := flag.String("chrome", "", "Chromium binary path (autodetected when empty)")
	headless := flag.Bool("headless", true, "Run the browser headless")
	waitTimeout := flag.Duration("wait-timeout", 0, "Per-selector wait timeout (0 uses the default)")
	flag.Parse()

	if strings.TrimSpace(*input) == "" {
		log.Fatal("missing required flag -input")
	}
	workers := *parallel
	if workers < 0 {
		workers = resolve.DefaultParallelWorkers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "weight-resolve")
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	table, err := dataset.LoadCSV(*input)
	if err != nil {
		log.Fatal(err)
	}
	work := table.UnresolvedWork()
	log.Printf("loaded %s: %d rows, %d missing weights", *input, table.Len(), len(work))

	chainCfg := sources.ChainConfig{
		Browser: browser.Config{
			ChromePath:  *chromePath,
			Headless:    *headless,
			WaitTimeout: *waitTimeout,
		},
	}
	if *adapters != "" {
		chainCfg.Adapters = strings.Split(*adapters, ",")
	}
	if completer, err := sources.NewAnthropicCompleterFromEnv(); err != nil {
		log.Printf("completion fallback disabled: %v", err)
	} else {
		chainCfg.Completer = completer
	}

	var journal *dataset.Journal
	if *journalPath != "" {
		journal, err = dataset.OpenJournal(*journalPath)
		if err != nil {
			log.Fatal(err)
		}
		defer journal.Close()
	}

	runID := uuid.NewString()
	startedAt := time.Now()
	if journal != nil {
		if err := journal.BeginRun(runID, *input, table.Len()); err != nil {
			log.Fatal(err)
		}
	}

	// The runner calls commit from a single goroutine in both modes.
	var (
		results       []resolve.Result
		reviewEntries []dataset.ReviewEntry
	)
	commit := func(res resolve.Result) error {
		results = append(results, res)
		if res.Found {
			table.Apply(res)
		}
		if journal != nil {
			if err := journal.RecordResult(runID, res); err != nil {
				return err
			}
		}
		if res.Found {
			return nil
		}
		entry := dataset.ReviewEntryFor(res)
		reviewEntries = append(reviewEntries, entry)
		if journal != nil {
			return journal.RecordReview(runID, entry)
		}
		return nil
	}

	runner := resolve.NewRunner(resolve.RunnerConfig{
		Factory:     sources.NewChainFactory(chainCfg),
		MaxAttempts: *maxAttempts,
		Parallel:    workers,
	})

	log.Printf("starting run %s (parallel=%d)", runID, workers)
	runErr := runner.Run(ctx, work, commit)

	// Committed progress is written out even when the run stopped early.
	if err := table.WriteCSV(*output); err != nil {
		log.Fatal(err)
	}
	if err := dataset.WriteReviewCSV(*review, reviewEntries); err != nil {
		log.Fatal(err)
	}
	if *reportPath != "" {
		summary := report.Summary{
			RunID:      runID,
			InputPath:  *input,
			OutputPath: *output,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
			TotalRows:  table.Len(),
			Attempted:  len(work),
			Results:    results,
			Review:     reviewEntries,
		}
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			summary.Aborted = runErr.Error()
		}
		if err := os.WriteFile(*reportPath, []byte(report.BuildMarkdown(summary)), 0o644); err != nil {
			log.Fatal(err)
		}
	}
	if journal != nil && runErr == nil {
		if err := journal.CompleteRun(runID); err != nil {
			log.Fatal(err)
		}
	}

	resolved := 0
	for _, r := range results {
		if r.Found {
			resolved++
		}
	}
	log.Printf("run %s finished: %d resolved, %d for review, output %s", runID, resolved, len(reviewEntries), *output)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Fatal(runErr)
	}
}
