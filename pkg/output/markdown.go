package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownFormat outputs the report as GitHub-flavored markdown tables.
func MarkdownFormat(w io.Writer, r forecast.Result) {
	fmt.Fprint(w, markdown(r))
}

// HTMLFormat renders the markdown report to an HTML fragment.
func HTMLFormat(w io.Writer, r forecast.Result) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown(r)), &buf); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func markdown(r forecast.Result) string {
	var b strings.Builder
	name := r.Name
	if name == "" {
		name = "Business plan"
	}
	fmt.Fprintf(&b, "# Pro-forma: %s\n\n", escapeCell(name))

	for _, s := range sections(r) {
		fmt.Fprintf(&b, "## %s\n\n| Voce | Importo |\n| --- | ---: |\n", s.title)
		for _, rw := range s.rows {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(rw.label), escapeCell(rw.value))
		}
		b.WriteString("\n")
	}

	if len(r.Projection) > 0 {
		b.WriteString("## Conto economico\n\n")
		table := periodTable(r)
		writeTableRow(&b, table[0])
		align := make([]string, len(table[0]))
		for i := range align {
			align[i] = "---:"
		}
		align[0] = "---"
		writeTableRow(&b, align)
		for _, line := range table[1:] {
			writeTableRow(&b, line)
		}
		b.WriteString("\n")
	}

	if r.Blocked {
		fmt.Fprintf(&b, "**Fabbisogno non coperto: %s**\n\n", r.Display.Gap)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("## Avvisi\n\n")
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", escapeCell(warning))
		}
	}
	return b.String()
}

func writeTableRow(b *strings.Builder, cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = escapeCell(c)
	}
	fmt.Fprintf(b, "| %s |\n", strings.Join(escaped, " | "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
