package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetetl/internal"
	"sheetetl/internal/config"
)

// Connector reads a worksheet from a local workbook, typically a
// "Download as .xlsx" copy of the live spreadsheet.
type Connector struct {
	path  string
	sheet string
}

func NewConnector(src config.SourceSpec) *Connector {
	return &Connector{path: src.Path, sheet: strings.TrimSpace(src.Sheet)}
}

func (c *Connector) Describe() string {
	return fmt.Sprintf("xlsx:%s#%s", c.path, c.sheet)
}

func (c *Connector) Fetch(ctx context.Context) (internal.Table, error) {
	if err := ctx.Err(); err != nil {
		return internal.Table{}, err
	}
	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return internal.Table{}, err
	}
	defer f.Close()

	sheet := c.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return internal.Table{}, fmt.Errorf("no worksheet named %q in %s", sheet, c.path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return internal.Table{}, err
	}
	return internal.NewTable(rows), nil
}
