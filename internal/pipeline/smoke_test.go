package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"sheetetl/internal"
	"sheetetl/internal/config"
	"sheetetl/internal/sources"
	"sheetetl/internal/storage"
)

func TestSmokeWorkbookToCSV(t *testing.T) {
	tmp := t.TempDir()

	book := filepath.Join(tmp, "consoles.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Poscode Genesis", "Cons Code", "Nama Konsol", "Keterangan"},
		{"G100", "C1", "Konsol A", "aktif"},
		{"-", "C2", "Konsol B", ""},
		{"G300", "C3", "Konsol C", "cadangan"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(book); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	db, err := storage.Open(filepath.Join(tmp, "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	job, err := config.FindJob(config.DefaultJobs(), "pos_console_mapping")
	if err != nil {
		t.Fatal(err)
	}
	job.Source = config.SourceSpec{Kind: internal.SourceXLSX, Path: book}

	cfg := config.Config{OutputDir: filepath.Join(tmp, "out"), SheetsRateLimitRPS: 1}
	runner := NewRunner(cfg, sources.NewFactory(cfg), db, nil)
	report := runner.RunAll(context.Background(), []config.Job{job})

	res := report.Results[0]
	if res.Status != internal.RunOK {
		t.Fatalf("result=%+v", res)
	}
	blob, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "pos_code_genesis;console_code;console_name;keterangan\n" +
		"G100;C1;Konsol A;aktif\n" +
		"G300;C3;Konsol C;cadangan\n"
	if string(blob) != want {
		t.Fatalf("csv=%q", blob)
	}

	runs, err := db.ListRuns(job.Name, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].TraceID != report.TraceID || runs[0].Stats.RowsWritten != 2 || runs[0].Stats.RowsFiltered != 1 {
		t.Fatalf("runs=%+v", runs)
	}
	last, err := db.GetMetadata("job.pos_console_mapping.last_success")
	if err != nil || last == nil {
		t.Fatalf("last_success=%v err=%v", last, err)
	}
}
