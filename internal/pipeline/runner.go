package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sheetetl/internal"
	"sheetetl/internal/config"
	"sheetetl/internal/sources"
	"sheetetl/internal/util"
)

type SourceFactory interface {
	New(ctx context.Context, job config.Job) (sources.RowSource, error)
}

// RunRecorder persists job outcomes; *storage.DB satisfies it.
type RunRecorder interface {
	InsertRun(traceID string, result internal.JobResult) error
	SetMetadata(key, value string) error
}

type Runner struct {
	cfg      config.Config
	sources  SourceFactory
	recorder RunRecorder
	log      *zap.Logger

	// OnSentinel, when set, sees every cell replaced by a fallback value.
	OnSentinel func(job, column, raw string)
}

type RunReport struct {
	TraceID string
	Results []internal.JobResult
}

func NewRunner(cfg config.Config, sources SourceFactory, recorder RunRecorder, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, sources: sources, recorder: recorder, log: log}
}

// RunAll runs every job in order. A failing job never stops the ones after it.
func (r *Runner) RunAll(ctx context.Context, jobs []config.Job) RunReport {
	report := RunReport{TraceID: traceID()}
	for _, job := range jobs {
		result := r.RunJob(ctx, job)
		r.record(report.TraceID, result)
		report.Results = append(report.Results, result)
	}
	return report
}

func (r *Runner) RunJob(ctx context.Context, job config.Job) (result internal.JobResult) {
	start := time.Now()
	result = internal.JobResult{Job: job.Name, Source: job.SourceID()}
	log := r.log.With(zap.String("job", job.Name), zap.String("source", result.Source))

	defer func() {
		if p := recover(); p != nil {
			result.Status = internal.RunFailed
			result.Err = fmt.Errorf("panic: %v", p)
			log.Error("pipeline: job panicked", zap.Error(result.Err))
		}
		result.DurationMs = time.Since(start).Milliseconds()
	}()

	err := r.execute(ctx, job, log, &result)
	result.Err = err

	var noColumns *NoColumnsError
	switch {
	case err == nil:
		result.Status = internal.RunOK
		log.Info("pipeline: saved rows",
			zap.Int("rows", result.Stats.RowsWritten),
			zap.String("output", result.OutputPath),
		)
	case errors.Is(err, ErrSourceEmpty):
		result.Status = internal.RunSkippedEmpty
		log.Warn("pipeline: sheet is empty, skipping")
	case errors.As(err, &noColumns):
		result.Status = internal.RunSkippedNoColumns
		log.Warn("pipeline: none of the specified columns were found",
			zap.Strings("wanted", job.Columns),
			zap.Strings("available", noColumns.Available),
		)
	default:
		result.Status = internal.RunFailed
		log.Error("pipeline: job failed", zap.Error(err))
	}
	return result
}

func (r *Runner) execute(ctx context.Context, job config.Job, log *zap.Logger, result *internal.JobResult) error {
	src, err := r.sources.New(ctx, job)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	result.Source = src.Describe()

	raw, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", src.Describe(), err)
	}

	sentinel := util.LegacyTimestampSentinel
	if r.cfg.TimestampISOSentinel {
		sentinel = util.ISOTimestampSentinel
	}
	opts := TransformOptions{TimestampSentinel: sentinel}
	if r.OnSentinel != nil {
		opts.OnSentinel = func(column, value string) { r.OnSentinel(job.Name, column, value) }
	}

	out, stats, err := Transform(job, raw, opts)
	result.Stats = stats
	if err != nil {
		return err
	}

	if stats.CoordinatesDefaulted > 0 {
		log.Info("pipeline: coordinates were null/invalid and set to 0.0", zap.Int("count", stats.CoordinatesDefaulted))
	}
	if stats.TimestampsDefaulted > 0 {
		log.Info("pipeline: timestamps were empty/invalid and set to sentinel",
			zap.Int("count", stats.TimestampsDefaulted),
			zap.String("sentinel", sentinel),
		)
	}
	if stats.RowsFiltered > 0 {
		log.Info("pipeline: filtered out rows with invalid codes",
			zap.Int("count", stats.RowsFiltered),
			zap.String("field", job.CodeField),
		)
	}

	outputPath := r.cfg.ResolveOutput(job.Output.Path)
	if err := writeOutput(out, job.Output.Format, outputPath); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	result.OutputPath = outputPath
	return nil
}

func (r *Runner) record(trace string, result internal.JobResult) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.InsertRun(trace, result); err != nil {
		r.log.Warn("pipeline: failed to record run", zap.String("job", result.Job), zap.Error(err))
	}
	if result.Status == internal.RunOK {
		key := "job." + result.Job + ".last_success"
		if err := r.recorder.SetMetadata(key, time.Now().UTC().Format(time.RFC3339)); err != nil {
			r.log.Warn("pipeline: failed to update metadata", zap.String("key", key), zap.Error(err))
		}
	}
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
