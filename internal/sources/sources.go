package sources

import (
	"context"
	"fmt"

	"sheetetl/internal"
	"sheetetl/internal/config"
	"sheetetl/internal/sources/gsheets"
	"sheetetl/internal/sources/htmltable"
	"sheetetl/internal/sources/xlsx"
)

// RowSource yields one worksheet as a header row plus text rows.
type RowSource interface {
	Fetch(ctx context.Context) (internal.Table, error)
	Describe() string
}

// Factory builds the source for a job. Sheets connectors share one rate
// limiter so sequential jobs stay under the API quota.
type Factory struct {
	cfg     config.Config
	limiter *gsheets.RateLimiter
}

func NewFactory(cfg config.Config) *Factory {
	return &Factory{cfg: cfg, limiter: gsheets.NewRateLimiter(cfg.SheetsRateLimitRPS)}
}

func (f *Factory) New(ctx context.Context, job config.Job) (RowSource, error) {
	switch job.Source.Kind {
	case internal.SourceGSheet:
		return gsheets.NewConnector(ctx, f.cfg, job.Source, f.limiter)
	case internal.SourceXLSX:
		return xlsx.NewConnector(job.Source), nil
	case internal.SourceHTMLTable:
		return htmltable.NewConnector(job.Source), nil
	default:
		return nil, fmt.Errorf("unsupported source kind: %s", job.Source.Kind)
	}
}
