package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"sheetetl/internal"
	"sheetetl/internal/config"
	"sheetetl/internal/logging"
	"sheetetl/internal/pipeline"
	"sheetetl/internal/sources"
	"sheetetl/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = log.Sync() }()

	jobs, err := config.LoadJobs(cfg)
	must(err)

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("job", "", "run a single job by name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) != "" {
			job, err := config.FindJob(jobs, *name)
			must(err)
			jobs = []config.Job{job}
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		runner := pipeline.NewRunner(cfg, sources.NewFactory(cfg), db, log)
		runner.OnSentinel = func(job, column, raw string) {
			log.Debug("pipeline: value replaced by fallback",
				zap.String("job", job),
				zap.String("column", column),
				zap.String("raw", raw),
			)
		}
		report := runner.RunAll(ctx, jobs)

		ok := 0
		for _, res := range report.Results {
			if res.Status == internal.RunOK {
				ok++
				fmt.Printf("%-22s ok      rows=%d filtered=%d output=%s\n", res.Job, res.Stats.RowsWritten, res.Stats.RowsFiltered, res.OutputPath)
				continue
			}
			fmt.Printf("%-22s %-7s %v\n", res.Job, res.Status, res.Err)
		}
		fmt.Printf("run done trace=%s jobs=%d ok=%d\n", report.TraceID, len(report.Results), ok)
	case "jobs":
		for _, job := range jobs {
			fmt.Printf("%-22s %-6s %s -> %s\n", job.Name, job.Source.Kind, job.SourceID(), cfg.ResolveOutput(job.Output.Path))
		}
	case "history":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("job", "", "filter by job name")
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		if *limit <= 0 {
			must(fmt.Errorf("--limit must be positive"))
		}

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()

		runs, err := db.ListRuns(strings.TrimSpace(*name), *limit)
		must(err)
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return
		}
		for _, r := range runs {
			fmt.Printf("%s %s %-22s %-18s written=%d filtered=%d coords=%d timestamps=%d %dms",
				r.CreatedAt, r.TraceID, r.Job, r.Status,
				r.Stats.RowsWritten, r.Stats.RowsFiltered, r.Stats.CoordinatesDefaulted, r.Stats.TimestampsDefaulted,
				r.DurationMs,
			)
			if r.Error != "" {
				fmt.Printf(" error=%q", r.Error)
			}
			fmt.Println()
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: sheetetl <command>")
	fmt.Println("commands:")
	fmt.Println("  run [--job=pos_photo_master]")
	fmt.Println("  jobs")
	fmt.Println("  history [--job=...] [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
