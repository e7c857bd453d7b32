package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/aleister1102/httpeek/internal/models"
)

const (
	liveURLWidth    = 48
	liveIPWidth     = 16
	liveStatusWidth = 6
	liveTitleWidth  = 48
)

// LiveWriter prints one aligned row per result as results arrive.
// The header is printed before the first row.
type LiveWriter struct {
	out           io.Writer
	styles        *Styles
	headerWritten bool
}

// NewLiveWriter writes rows to out.
func NewLiveWriter(out io.Writer, noColor bool) *LiveWriter {
	return &LiveWriter{out: out, styles: NewStyles(out, noColor)}
}

func (lw *LiveWriter) Write(result *models.ProbeResult) error {
	if !lw.headerWritten {
		if _, err := fmt.Fprintln(lw.out, lw.header()); err != nil {
			return err
		}
		lw.headerWritten = true
	}
	_, err := fmt.Fprintln(lw.out, lw.row(result))
	return err
}

func (lw *LiveWriter) header() string {
	line := strings.Join([]string{
		padRight("URL", liveURLWidth),
		padRight("IP", liveIPWidth),
		padRight("Status", liveStatusWidth),
		padRight("Title", liveTitleWidth),
		"Redirect",
	}, " ")
	return lw.styles.Header.Render(line)
}

func (lw *LiveWriter) row(result *models.ProbeResult) string {
	code, ok := result.StatusCode()
	return strings.Join([]string{
		padRight(lw.styles.URL.Render(truncate(result.URL, liveURLWidth)), liveURLWidth),
		padRight(lw.styles.IP.Render(result.IP), liveIPWidth),
		padRight(lw.styles.Status(code, ok, result.StatusText()), liveStatusWidth),
		padRight(lw.styles.Title.Render(truncate(result.Title, liveTitleWidth)), liveTitleWidth),
		lw.styles.Redirect.Render(result.Redirect),
	}, " ")
}
