package pipeline

import (
	"fmt"
	"strings"

	"sheetetl/internal"
	"sheetetl/internal/config"
	"sheetetl/internal/util"
)

// SentinelFunc is told about every cell replaced by a fallback value.
type SentinelFunc func(column, raw string)

type TransformOptions struct {
	TimestampSentinel string
	OnSentinel        SentinelFunc
}

// Transform turns a fetched worksheet into the job's canonical records:
// unique headers, reconciled projection, coordinate split, rename, code
// filter, timestamp normalization and output ordering.
func Transform(job config.Job, raw internal.Table, opts TransformOptions) (internal.Table, internal.JobStats, error) {
	stats := internal.JobStats{RowsFetched: len(raw.Rows)}
	if len(raw.Headers) == 0 || len(raw.Rows) == 0 {
		return internal.Table{}, stats, ErrSourceEmpty
	}
	if opts.TimestampSentinel == "" {
		opts.TimestampSentinel = util.LegacyTimestampSentinel
	}
	if opts.OnSentinel == nil {
		opts.OnSentinel = func(string, string) {}
	}

	headers := util.MakeHeadersUnique(raw.Headers)
	columns := ReconcileColumns(headers, job.Columns)
	if len(columns) == 0 {
		return internal.Table{}, stats, &NoColumnsError{Available: headers}
	}
	t := Project(internal.Table{Headers: headers, Rows: raw.Rows}, columns)

	if job.Coordinates != nil {
		defaulted, err := splitCoordinates(&t, *job.Coordinates, opts.OnSentinel)
		if err != nil {
			return internal.Table{}, stats, err
		}
		stats.CoordinatesDefaulted = defaulted
	}

	renameColumns(&t, job.Rename)

	before := len(t.Rows)
	if err := filterValidCodes(&t, job.CodeField); err != nil {
		return internal.Table{}, stats, err
	}
	stats.RowsFiltered = before - len(t.Rows)

	for _, field := range job.Timestamps {
		defaulted, err := normalizeTimestamps(&t, field, opts.TimestampSentinel, opts.OnSentinel)
		if err != nil {
			return internal.Table{}, stats, err
		}
		stats.TimestampsDefaulted += defaulted
	}

	if len(job.Order) > 0 {
		for _, name := range job.Order {
			if t.ColumnIndex(name) < 0 {
				return internal.Table{}, stats, fmt.Errorf("output column %q not found; have %s", name, strings.Join(t.Headers, ", "))
			}
		}
		t = Project(t, job.Order)
	}

	stats.RowsWritten = len(t.Rows)
	return t, stats, nil
}

// splitCoordinates replaces the first column matching spec.Column with
// latitude and longitude columns appended at the end.
func splitCoordinates(t *internal.Table, spec config.CoordinateSpec, onSentinel SentinelFunc) (int, error) {
	src := -1
	for i, h := range t.Headers {
		if strings.HasPrefix(h, spec.Column) {
			src = i
			break
		}
	}
	if src < 0 {
		return 0, fmt.Errorf("coordinate column %q not found", spec.Column)
	}
	column := t.Headers[src]

	defaulted := 0
	headers := make([]string, 0, len(t.Headers)+1)
	headers = append(headers, t.Headers[:src]...)
	headers = append(headers, t.Headers[src+1:]...)
	headers = append(headers, spec.Latitude, spec.Longitude)

	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		lat, lon, ok := util.ParseCoordinates(row[src])
		if !ok {
			defaulted++
			onSentinel(column, row[src])
		}
		out := make([]string, 0, len(headers))
		out = append(out, row[:src]...)
		out = append(out, row[src+1:]...)
		out = append(out, lat, lon)
		rows = append(rows, out)
	}

	t.Headers = headers
	t.Rows = rows
	return defaulted, nil
}

func renameColumns(t *internal.Table, rename map[string]string) {
	for i, h := range t.Headers {
		if to, ok := rename[h]; ok {
			t.Headers[i] = to
		}
	}
}

func filterValidCodes(t *internal.Table, field string) error {
	idx := t.ColumnIndex(field)
	if idx < 0 {
		return fmt.Errorf("code field %q not found; have %s", field, strings.Join(t.Headers, ", "))
	}
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if util.IsValidCode(row[idx]) {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
	return nil
}

func normalizeTimestamps(t *internal.Table, field, sentinel string, onSentinel SentinelFunc) (int, error) {
	idx := t.ColumnIndex(field)
	if idx < 0 {
		return 0, fmt.Errorf("timestamp field %q not found", field)
	}
	defaulted := 0
	for _, row := range t.Rows {
		formatted, ok := util.FormatTimestamp(row[idx], sentinel)
		if !ok {
			defaulted++
			onSentinel(field, row[idx])
		}
		row[idx] = formatted
	}
	return defaulted, nil
}
