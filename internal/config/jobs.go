package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sheetetl/internal"
)

type SourceSpec struct {
	Kind          internal.SourceKind `yaml:"kind"`
	SpreadsheetID string              `yaml:"spreadsheet_id"`
	WorksheetGID  string              `yaml:"worksheet_gid"`
	Path          string              `yaml:"path"`
	Sheet         string              `yaml:"sheet"`
	Table         int                 `yaml:"table"`
}

// CoordinateSpec splits one free-form coordinate column into two. Column is
// matched by prefix against the reconciled headers; Latitude and Longitude
// are the pre-rename names of the appended columns.
type CoordinateSpec struct {
	Column    string `yaml:"column"`
	Latitude  string `yaml:"latitude"`
	Longitude string `yaml:"longitude"`
}

type OutputSpec struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

type Job struct {
	Name        string            `yaml:"name"`
	Source      SourceSpec        `yaml:"source"`
	Columns     []string          `yaml:"columns"`
	Rename      map[string]string `yaml:"rename"`
	Order       []string          `yaml:"order"`
	CodeField   string            `yaml:"code_field"`
	Coordinates *CoordinateSpec   `yaml:"coordinates"`
	Timestamps  []string          `yaml:"timestamps"`
	Output      OutputSpec        `yaml:"output"`
}

type jobsFile struct {
	Jobs []Job `yaml:"jobs"`
}

// SourceID identifies the job's data source in logs and run history.
func (j Job) SourceID() string {
	switch j.Source.Kind {
	case internal.SourceGSheet:
		return fmt.Sprintf("gsheet:%s#gid=%s", j.Source.SpreadsheetID, j.Source.WorksheetGID)
	case internal.SourceXLSX:
		return fmt.Sprintf("xlsx:%s#%s", j.Source.Path, j.Source.Sheet)
	case internal.SourceHTMLTable:
		return fmt.Sprintf("html:%s#%d", j.Source.Path, j.Source.Table)
	default:
		return string(j.Source.Kind)
	}
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.Name) == "" {
		return errors.New("job name is required")
	}
	if len(j.Columns) == 0 {
		return fmt.Errorf("job %s: columns are required", j.Name)
	}
	if strings.TrimSpace(j.CodeField) == "" {
		return fmt.Errorf("job %s: code_field is required", j.Name)
	}
	if strings.TrimSpace(j.Output.Path) == "" {
		return fmt.Errorf("job %s: output.path is required", j.Name)
	}
	switch j.Output.Format {
	case "", "csv", "xlsx":
	default:
		return fmt.Errorf("job %s: unsupported output format: %s", j.Name, j.Output.Format)
	}
	if c := j.Coordinates; c != nil {
		if c.Column == "" || c.Latitude == "" || c.Longitude == "" {
			return fmt.Errorf("job %s: coordinates need column, latitude and longitude", j.Name)
		}
	}
	switch j.Source.Kind {
	case internal.SourceGSheet:
		if j.Source.SpreadsheetID == "" || j.Source.WorksheetGID == "" {
			return fmt.Errorf("job %s: gsheet source needs spreadsheet_id and worksheet_gid", j.Name)
		}
	case internal.SourceXLSX, internal.SourceHTMLTable:
		if j.Source.Path == "" {
			return fmt.Errorf("job %s: %s source needs path", j.Name, j.Source.Kind)
		}
	default:
		return fmt.Errorf("job %s: unsupported source kind: %s", j.Name, j.Source.Kind)
	}
	return nil
}

// LoadJobs reads job definitions from cfg.JobsFile, or returns the built-in
// POS master jobs when no file is configured.
func LoadJobs(cfg Config) ([]Job, error) {
	if strings.TrimSpace(cfg.JobsFile) == "" {
		return DefaultJobs(), nil
	}
	blob, err := os.ReadFile(cfg.JobsFile)
	if err != nil {
		return nil, err
	}
	return ParseJobs(blob)
}

func ParseJobs(blob []byte) ([]Job, error) {
	var file jobsFile
	if err := yaml.Unmarshal(blob, &file); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}
	if len(file.Jobs) == 0 {
		return nil, errors.New("jobs file defines no jobs")
	}
	seen := map[string]struct{}{}
	for _, job := range file.Jobs {
		if err := job.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[job.Name]; ok {
			return nil, fmt.Errorf("duplicate job name: %s", job.Name)
		}
		seen[job.Name] = struct{}{}
	}
	return file.Jobs, nil
}

func FindJob(jobs []Job, name string) (Job, error) {
	for _, job := range jobs {
		if job.Name == name {
			return job, nil
		}
	}
	return Job{}, fmt.Errorf("unknown job: %s", name)
}

func DefaultJobs() []Job {
	return []Job{
		{
			Name: "pos_photo_master",
			Source: SourceSpec{
				Kind:          internal.SourceGSheet,
				SpreadsheetID: "1YniWV0eQVH5cMRrrFLjevFnqaRz1bDagJHQYcM_pDF0",
				WorksheetGID:  "1019753355",
			},
			Columns: []string{
				"POSCode",
				"POS Name",
				"Foto Lokasi Bagian Dalam",
				"Foto Lokasi Bagian Depan",
				"Lokasi",
				"Kota/Kabupaten",
				"Jenis Bangunan",
				"Titik Kordinat",
				"Address",
			},
			Coordinates: &CoordinateSpec{Column: "Titik Kordinat", Latitude: "Latitude", Longitude: "Longitude"},
			Rename: map[string]string{
				"POSCode":                  "pos_code",
				"POS Name":                 "pos_name",
				"Foto Lokasi Bagian Dalam": "foto_lokasi_bagian_dalam",
				"Foto Lokasi Bagian Depan": "foto_lokasi_bagian_depan",
				"Lokasi":                   "lokasi",
				"Kota/Kabupaten":           "kota_kabupaten",
				"Jenis Bangunan":           "jenis_bangunan",
				"Latitude":                 "latitude",
				"Longitude":                "longitude",
				"Address":                  "alamat",
			},
			CodeField: "pos_code",
			Order: []string{
				"pos_code",
				"foto_lokasi_bagian_dalam",
				"foto_lokasi_bagian_depan",
				"lokasi",
				"kota_kabupaten",
				"jenis_bangunan",
				"latitude",
				"longitude",
				"alamat",
				"pos_name",
			},
			Output: OutputSpec{Path: "pos_code_master_photo_data_1.csv", Format: "csv"},
		},
		{
			Name: "pos_photo_upload",
			Source: SourceSpec{
				Kind:          internal.SourceGSheet,
				SpreadsheetID: "1VW0AFMpkjLVa1muXmV8JxTWaTUQ_6_SukNlxHssPdwQ",
				WorksheetGID:  "1868279837",
			},
			Columns: []string{
				"P.O.S Code",
				"FOTO 1 (TAMPAK DEPAN)",
				"FOTO 2 (TAMPAK DALAM)",
				"FOTO 4 (TAMBAHAN DETAIL LOKASI POS)",
				"Status Upload",
				"Timestamp",
			},
			Rename: map[string]string{
				"P.O.S Code":                          "pos_code",
				"FOTO 2 (TAMPAK DALAM)":               "foto_lokasi_bagian_dalam",
				"FOTO 1 (TAMPAK DEPAN)":               "foto_lokasi_bagian_depan",
				"FOTO 4 (TAMBAHAN DETAIL LOKASI POS)": "foto_tambahan_lokasi_pos",
				"Status Upload":                       "status_upload",
				"Timestamp":                           "timestamp",
			},
			CodeField:  "pos_code",
			Timestamps: []string{"timestamp"},
			Output:     OutputSpec{Path: "pos_code_master_photo_data_2.csv", Format: "csv"},
		},
		{
			Name: "pos_console_mapping",
			Source: SourceSpec{
				Kind:          internal.SourceGSheet,
				SpreadsheetID: "1YniWV0eQVH5cMRrrFLjevFnqaRz1bDagJHQYcM_pDF0",
				WorksheetGID:  "706015433",
			},
			Columns: []string{
				"Poscode Genesis",
				"Cons Code",
				"Nama Konsol",
				"Keterangan",
			},
			Rename: map[string]string{
				"Poscode Genesis": "pos_code_genesis",
				"Cons Code":       "console_code",
				"Nama Konsol":     "console_name",
				"Keterangan":      "keterangan",
			},
			CodeField: "pos_code_genesis",
			Order: []string{
				"pos_code_genesis",
				"console_code",
				"console_name",
				"keterangan",
			},
			Output: OutputSpec{Path: "pos_code_master_photo_data_3.csv", Format: "csv"},
		},
	}
}
