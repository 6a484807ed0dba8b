package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// SummaryCard renders the export summary panel as an HTMX fragment.
func SummaryCard(s Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<div id="export-summary" class="rounded-lg border border-gray-200 bg-white p-4 text-sm">`)
		fmt.Fprintf(&b, `<h3 class="mb-3 font-semibold text-gray-900">%s</h3>`, esc(datasetTitle(s)))

		b.WriteString(`<dl class="grid grid-cols-2 gap-x-4 gap-y-2">`)
		summaryRow(&b, "Estimated rows", s.RowCountLabel)
		summaryRow(&b, "File size", s.FileSizeLabel)
		summaryRow(&b, "Processing time", s.ProcessingTimeLabel)
		summaryRow(&b, "Format", strings.ToUpper(string(s.Format)))
		summaryRow(&b, "Columns", fmt.Sprintf("%d", len(s.Columns)))
		summaryRow(&b, "Filters", fmt.Sprintf("%d", len(s.Filters)))
		if s.Computable {
			summaryRow(&b, "Valid until", s.ValidUntil.Format("Jan 2, 2006 15:04 MST"))
		}
		b.WriteString(`</dl>`)

		if len(s.Filters) > 0 {
			b.WriteString(`<ul class="mt-3 space-y-1 text-gray-600">`)
			for _, f := range s.Filters {
				fmt.Fprintf(&b, `<li data-filter-id="%s">%s %s %s</li>`,
					esc(f.ID), esc(f.FieldLabel), esc(f.OperatorLabel), esc(formatValue(f.Value)))
			}
			b.WriteString(`</ul>`)
		}

		if s.PIIColumnCount > 0 {
			fmt.Fprintf(&b, `<div class="mt-3 rounded bg-amber-50 p-2 text-amber-800" role="alert">%d column(s) contain personal data: %s`,
				s.PIIColumnCount, esc(strings.Join(s.PIIFields, ", ")))
			if s.RequiresPIIAck {
				b.WriteString(` <strong>Acknowledge before exporting.</strong>`)
			}
			b.WriteString(`</div>`)
		}

		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func summaryRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `<dt class="text-gray-500">%s</dt><dd class="text-right font-medium text-gray-900">%s</dd>`,
		esc(label), esc(value))
}

func datasetTitle(s Summary) string {
	if s.DatasetName != "" {
		return s.DatasetName
	}
	if s.Dataset != "" {
		return s.Dataset
	}
	return "No dataset selected"
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ", ")
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func esc(s string) string {
	return templ.EscapeString(s)
}
