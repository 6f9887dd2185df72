package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"sheetetl/internal"
)

var (
	ErrSourceEmpty      = errors.New("source is empty")
	ErrNoColumnsMatched = errors.New("none of the configured columns were found")
)

// NoColumnsError carries the headers that were available when reconciliation
// came up empty.
type NoColumnsError struct {
	Available []string
}

func (e *NoColumnsError) Error() string {
	return fmt.Sprintf("%s; available columns: %s", ErrNoColumnsMatched, strings.Join(e.Available, ", "))
}

func (e *NoColumnsError) Unwrap() error { return ErrNoColumnsMatched }

// ReconcileColumns returns, for each wanted prefix in order, every header that
// starts with it. "Foto" therefore picks up "Foto" and "Foto_1".
func ReconcileColumns(headers, wanted []string) []string {
	out := []string{}
	for _, prefix := range wanted {
		for _, h := range headers {
			if strings.HasPrefix(h, prefix) {
				out = append(out, h)
			}
		}
	}
	return out
}

// Project keeps only the named columns, in the given order. Names must be
// unique headers of t.
func Project(t internal.Table, columns []string) internal.Table {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.ColumnIndex(c)
	}

	out := internal.Table{
		Headers: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		projected := make([]string, len(idx))
		for i, j := range idx {
			if j >= 0 && j < len(row) {
				projected[i] = row[j]
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}
