package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"sheetetl/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	ok := internal.JobResult{
		Job:        "pos_photo_master",
		Source:     "gsheet:abc#gid=1",
		Status:     internal.RunOK,
		Stats:      internal.JobStats{RowsFetched: 5, RowsWritten: 4, RowsFiltered: 1, CoordinatesDefaulted: 2},
		OutputPath: "/out/a.csv",
		DurationMs: 12,
	}
	failed := internal.JobResult{
		Job:    "pos_console_mapping",
		Source: "gsheet:abc#gid=2",
		Status: internal.RunFailed,
		Err:    errors.New("boom"),
	}
	if err := db.InsertRun("trace-1", ok); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertRun("trace-1", failed); err != nil {
		t.Fatal(err)
	}

	all, err := db.ListRuns("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len=%d", len(all))
	}
	if all[0].Job != "pos_console_mapping" || all[0].Error != "boom" || all[0].OutputPath != "" {
		t.Fatalf("newest=%+v", all[0])
	}
	if all[1].Stats.CoordinatesDefaulted != 2 || all[1].OutputPath != "/out/a.csv" || all[1].TraceID != "trace-1" {
		t.Fatalf("oldest=%+v", all[1])
	}

	one, err := db.ListRuns("pos_photo_master", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 || one[0].Status != string(internal.RunOK) {
		t.Fatalf("filtered=%+v", one)
	}
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetMetadata("missing")
	if err != nil || got != nil {
		t.Fatalf("got=%v err=%v", got, err)
	}
	if err := db.SetMetadata("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMetadata("k", "v2"); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetMetadata("k")
	if err != nil || got == nil || *got != "v2" {
		t.Fatalf("got=%v err=%v", got, err)
	}
}
