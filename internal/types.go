package internal

type SourceKind string

const (
	SourceGSheet    SourceKind = "gsheet"
	SourceXLSX      SourceKind = "xlsx"
	SourceHTMLTable SourceKind = "html"
)

// Table is a header row plus data rows of text cells. Rows are padded to the
// header length by the sources.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable treats the first row as headers and pads every row, headers
// included, to the widest row.
func NewTable(values [][]string) Table {
	if len(values) == 0 {
		return Table{}
	}
	width := 0
	for _, row := range values {
		if len(row) > width {
			width = len(row)
		}
	}
	pad := func(row []string) []string {
		out := make([]string, width)
		copy(out, row)
		return out
	}
	t := Table{Headers: pad(values[0]), Rows: make([][]string, 0, len(values)-1)}
	for _, row := range values[1:] {
		t.Rows = append(t.Rows, pad(row))
	}
	return t
}

func (t Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

type RunStatus string

const (
	RunOK               RunStatus = "ok"
	RunSkippedEmpty     RunStatus = "skipped_empty"
	RunSkippedNoColumns RunStatus = "skipped_no_columns"
	RunFailed           RunStatus = "failed"
)

type JobStats struct {
	RowsFetched          int `json:"rowsFetched"`
	RowsWritten          int `json:"rowsWritten"`
	RowsFiltered         int `json:"rowsFiltered"`
	CoordinatesDefaulted int `json:"coordinatesDefaulted"`
	TimestampsDefaulted  int `json:"timestampsDefaulted"`
}

type JobResult struct {
	Job        string
	Source     string
	Status     RunStatus
	Stats      JobStats
	OutputPath string
	Err        error
	DurationMs int64
}

type RunRow struct {
	ID         int
	TraceID    string
	Job        string
	Source     string
	Status     string
	Stats      JobStats
	OutputPath string
	Error      string
	DurationMs int64
	CreatedAt  string
}
