package csvx

import (
	"mime"
	"net/http"
	"strings"

	"github.com/mbolis/survey-admin/model"
)

// Column maps a dot-path key to a header label.
// Format renders present, non-null values; it defaults to model.String.
type Column struct {
	Key    string
	Label  string
	Format func(any) string
}

// Serialize renders a header line and one line per row, joined with "\n" and
// without a trailing newline. Missing and null values render as empty fields.
func Serialize(rows []model.Row, columns []Column) string {
	lines := make([]string, 0, len(rows)+1)

	fields := make([]string, len(columns))
	for i, c := range columns {
		fields[i] = Escape(c.Label)
	}
	lines = append(lines, strings.Join(fields, ","))

	for _, row := range rows {
		fields := make([]string, len(columns))
		for i, c := range columns {
			fields[i] = Escape(c.value(row))
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

func (c Column) value(row model.Row) string {
	v, _ := row.Get(c.Key)
	if v == nil {
		return ""
	}
	if c.Format != nil {
		return c.Format(v)
	}
	return model.String(v)
}

// Escape quotes a field only when it contains a comma, a double quote or a
// newline. encoding/csv also quotes leading spaces and carriage returns, which
// changes the output, so the rule is applied here by hand.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteDownload sends content as a CSV file attachment.
func WriteDownload(w http.ResponseWriter, filename, content string) error {
	h := w.Header()
	h.Set("Content-Type", "text/csv;charset=utf-8")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(content))
	return err
}
