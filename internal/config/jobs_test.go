package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sheetetl/internal"
)

func TestDefaultJobsAreValid(t *testing.T) {
	jobs := DefaultJobs()
	if len(jobs) != 3 {
		t.Fatalf("len=%d", len(jobs))
	}
	for _, job := range jobs {
		if err := job.Validate(); err != nil {
			t.Fatalf("%s: %v", job.Name, err)
		}
	}
}

func TestParseJobs(t *testing.T) {
	blob := []byte(`
jobs:
  - name: consoles
    source:
      kind: xlsx
      path: ./consoles.xlsx
      sheet: Sheet1
    columns: ["Cons Code", "Nama Konsol"]
    rename:
      Cons Code: console_code
      Nama Konsol: console_name
    order: [console_code, console_name]
    code_field: console_code
    timestamps: [updated]
    output:
      path: consoles.csv
`)
	jobs, err := ParseJobs(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("len=%d", len(jobs))
	}
	job := jobs[0]
	if job.Source.Kind != internal.SourceXLSX || job.Source.Sheet != "Sheet1" {
		t.Fatalf("source=%+v", job.Source)
	}
	if job.Rename["Cons Code"] != "console_code" {
		t.Fatalf("rename=%v", job.Rename)
	}
	if job.SourceID() != "xlsx:./consoles.xlsx#Sheet1" {
		t.Fatalf("sourceID=%s", job.SourceID())
	}
}

func TestParseJobsRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{name: "empty", yaml: `jobs: []`, want: "no jobs"},
		{name: "no columns", yaml: `
jobs:
  - name: a
    source: {kind: gsheet, spreadsheet_id: x, worksheet_gid: "1"}
    code_field: c
    output: {path: a.csv}
`, want: "columns are required"},
		{name: "bad kind", yaml: `
jobs:
  - name: a
    source: {kind: ftp}
    columns: [A]
    code_field: c
    output: {path: a.csv}
`, want: "unsupported source kind"},
		{name: "gsheet without gid", yaml: `
jobs:
  - name: a
    source: {kind: gsheet, spreadsheet_id: x}
    columns: [A]
    code_field: c
    output: {path: a.csv}
`, want: "worksheet_gid"},
		{name: "duplicate", yaml: `
jobs:
  - name: a
    source: {kind: html, path: a.html}
    columns: [A]
    code_field: c
    output: {path: a.csv}
  - name: a
    source: {kind: html, path: b.html}
    columns: [A]
    code_field: c
    output: {path: b.csv}
`, want: "duplicate job name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJobs([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want %q", err, tc.want)
			}
		})
	}
}

func TestLoadJobsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	blob := []byte(`
jobs:
  - name: pos
    source: {kind: html, path: pos.html, table: 1}
    columns: [POSCode]
    code_field: POSCode
    output: {path: pos.xlsx, format: xlsx}
`)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}
	jobs, err := LoadJobs(Config{JobsFile: path})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FindJob(jobs, "pos"); err != nil {
		t.Fatal(err)
	}
	if _, err := FindJob(jobs, "missing"); err == nil {
		t.Fatal("expected unknown job error")
	}

	defaults, err := LoadJobs(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if len(defaults) != 3 {
		t.Fatalf("defaults len=%d", len(defaults))
	}
}

func TestResolveOutput(t *testing.T) {
	cfg := Config{OutputDir: "/srv/out"}
	if got := cfg.ResolveOutput("a.csv"); got != filepath.Join("/srv/out", "a.csv") {
		t.Fatalf("got %s", got)
	}
	if got := cfg.ResolveOutput("/tmp/a.csv"); got != "/tmp/a.csv" {
		t.Fatalf("got %s", got)
	}
}
