package outputters

import (
	"fmt"
	"html"
	"strings"
)

// Inline styles for the email fragment. Most mail clients ignore <style>
// blocks, so everything rides on the elements themselves.
const (
	tableStyle = "border-collapse:collapse;font-family:Segoe UI,Arial,sans-serif;font-size:12px;"
	thStyle    = "background:#f2f2f2;border:1px solid #ddd;padding:6px 8px;text-align:left;"
	tdStyle    = "border:1px solid #ddd;padding:6px 8px;text-align:left;"
)

// HTMLTable renders a sheet as a minimal inline-styled table suitable for an
// email body. Nil cells render as empty strings; all values are escaped.
func HTMLTable(sheet Sheet) string {
	var b strings.Builder

	b.WriteString("<table style='" + tableStyle + "'><thead><tr>")
	for _, col := range sheet.Columns {
		b.WriteString("<th style='" + thStyle + "'>")
		b.WriteString(html.EscapeString(col.Header))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")

	for _, row := range sheet.Rows {
		b.WriteString("<tr>")
		for _, value := range row {
			b.WriteString("<td style='" + tdStyle + "'>")
			b.WriteString(html.EscapeString(cellString(value)))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	return b.String()
}

func cellString(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
