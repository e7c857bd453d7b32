package reporter

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aleister1102/httpeek/internal/models"
)

var tableHeaders = []string{"URL", "IP", "Status", "Title", "Redirect"}

// SortResults orders results by status bucket (no status last), then URL.
// The input slice is not modified.
func SortResults(results []*models.ProbeResult) []*models.ProbeResult {
	sorted := make([]*models.ProbeResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sorted[i].StatusBucket(), sorted[j].StatusBucket()
		if bi != bj {
			return bi < bj
		}
		return sorted[i].URL < sorted[j].URL
	})
	return sorted
}

// TableRenderer prints the whole result set as one table.
type TableRenderer struct {
	out    io.Writer
	styles *Styles
}

// NewTableRenderer writes tables to out.
func NewTableRenderer(out io.Writer, noColor bool) *TableRenderer {
	return &TableRenderer{out: out, styles: NewStyles(out, noColor)}
}

// Render prints nothing for an empty result set.
func (tr *TableRenderer) Render(results []*models.ProbeResult) error {
	if len(results) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, result := range SortResults(results) {
		code, ok := result.StatusCode()
		rows = append(rows, []string{
			tr.styles.URL.Render(result.URL),
			tr.styles.IP.Render(result.IP),
			tr.styles.Status(code, ok, result.StatusText()),
			tr.styles.Title.Render(result.Title),
			tr.styles.Redirect.Render(result.Redirect),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tableHeaders...).
		Rows(rows...)

	_, err := fmt.Fprintln(tr.out, t.String())
	return err
}
