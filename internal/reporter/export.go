package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aleister1102/httpeek/internal/common"
	"github.com/aleister1102/httpeek/internal/models"
)

// JSONWriter prints one JSON object per line.
type JSONWriter struct {
	encoder *json.Encoder
}

// NewJSONWriter writes JSON lines to out.
func NewJSONWriter(out io.Writer) *JSONWriter {
	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)
	return &JSONWriter{encoder: encoder}
}

func (jw *JSONWriter) Write(result *models.ProbeResult) error {
	if err := jw.encoder.Encode(result); err != nil {
		return common.WrapError(err, "failed to encode result")
	}
	return nil
}

// CSVWriter prints url,ip,status,length,"raw title" rows.
// The title is always quoted with embedded quotes doubled; status is empty when absent.
// A URL is quoted only when it contains a comma, a quote or a line break.
type CSVWriter struct {
	out io.Writer
}

// NewCSVWriter writes CSV rows to out.
func NewCSVWriter(out io.Writer) *CSVWriter {
	return &CSVWriter{out: out}
}

func (cw *CSVWriter) Write(result *models.ProbeResult) error {
	_, err := fmt.Fprintln(cw.out, FormatCSV(result))
	return err
}

// FormatCSV renders one CSV row without the trailing newline.
func FormatCSV(result *models.ProbeResult) string {
	status := ""
	if code, ok := result.StatusCode(); ok {
		status = strconv.Itoa(code)
	}
	return fmt.Sprintf(`%s,%s,%s,%d,%s`, csvField(result.URL), result.IP, status, result.Length, quoteCSV(result.RawTitle))
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quoteCSV(s)
	}
	return s
}
