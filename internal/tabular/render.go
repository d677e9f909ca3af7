package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
)

// WriteCSV renders the result with a header line. An empty result yields the
// header line only, which is still a valid CSV document.
func (r Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(r.Columns))
	for i, row := range r.Rows {
		for j, v := range row {
			record[j] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON renders the result as an array of objects keyed by column name.
// An empty result yields the empty array document.
func (r Result) WriteJSON(w io.Writer) error {
	docs := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		doc := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			doc[col] = row[j]
		}
		docs = append(docs, doc)
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteHTML renders a minimal table. An empty result yields a table with the
// header row only.
func (r Result) WriteHTML(w io.Writer) error {
	var b strings.Builder
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, col := range r.Columns {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(col))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range r.Rows {
		b.WriteString("<tr>")
		for _, v := range row {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(formatCell(v)))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func formatCell(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
