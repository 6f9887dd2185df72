package htmltable

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sheetetl/internal"
	"sheetetl/internal/config"
)

var reSpaces = regexp.MustCompile(`\s+`)

// Connector reads one <table> from an HTML export of a sheet
// ("File > Download > Web page" or a saved publish-to-web page).
type Connector struct {
	path  string
	table int
}

func NewConnector(src config.SourceSpec) *Connector {
	return &Connector{path: src.Path, table: src.Table}
}

func (c *Connector) Describe() string {
	return fmt.Sprintf("html:%s#%d", c.path, c.table)
}

func (c *Connector) Fetch(ctx context.Context) (internal.Table, error) {
	if err := ctx.Err(); err != nil {
		return internal.Table{}, err
	}
	f, err := os.Open(c.path)
	if err != nil {
		return internal.Table{}, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return internal.Table{}, err
	}
	return parseTable(doc, c.table)
}

func parseTable(doc *goquery.Document, index int) (internal.Table, error) {
	tables := doc.Find("table")
	if index < 0 || index >= tables.Length() {
		return internal.Table{}, fmt.Errorf("html table %d not found (%d tables)", index, tables.Length())
	}

	values := [][]string{}
	tables.Eq(index).Find("tr").Each(func(_ int, row *goquery.Selection) {
		// Google's export leads with a frozen A, B, C... letter row.
		if row.Find(".column-headers-background").Length() > 0 {
			return
		}
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			// Row numbers and the corner cell.
			if cell.HasClass("row-headers-background") || cell.HasClass("row-header") {
				return
			}
			cells = append(cells, normalizeSpaces(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		values = append(values, cells)
	})

	return internal.NewTable(values), nil
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}
