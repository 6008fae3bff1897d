package display

import (
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Align selects the horizontal alignment of a table column. AlignAuto
// right-aligns columns whose cells are all measurements (indices, sizes,
// durations, rates) and left-aligns everything else.
type Align int

const (
	AlignAuto Align = iota
	AlignLeft
	AlignRight
)

// Table is a rounded report table. Rows shorter than Headers are padded
// with empty cells; Aligns may be shorter than Headers. Footer, when set,
// is drawn under a separator (the clip listing's totals row).
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	Aligns  []Align
}

// Render draws the table. Header and footer text keep their case.
func (t Table) Render() string {
	columns := len(t.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	style := tw.Style()
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	style.Title.Format = text.FormatDefault
	if t.Title != "" {
		tw.SetTitle("%s", t.Title)
	}

	tw.AppendHeader(toRow(t.Headers, columns))
	for _, row := range t.Rows {
		tw.AppendRow(toRow(row, columns))
	}
	if len(t.Footer) > 0 {
		tw.AppendFooter(toRow(t.Footer, columns))
	}

	configs := make([]table.ColumnConfig, columns)
	for i := range configs {
		align := text.AlignLeft
		if t.columnAlign(i) == AlignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: align,
			AlignFooter: align,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// columnAlign resolves AlignAuto for column i from the body rows.
func (t Table) columnAlign(i int) Align {
	if i < len(t.Aligns) && t.Aligns[i] != AlignAuto {
		return t.Aligns[i]
	}
	seen := false
	for _, row := range t.Rows {
		if i >= len(row) || row[i] == "" {
			continue
		}
		if !isMeasurement(row[i]) {
			return AlignLeft
		}
		seen = true
	}
	if seen {
		return AlignRight
	}
	return AlignLeft
}

// isMeasurement reports whether s reads as a number with an optional unit:
// "3", "-1.5 dB", "7.5s", "3.0 KiB", "29.97". "?" and "n/a" stand in for
// unknown values of such columns.
func isMeasurement(s string) bool {
	if s == "?" || s == "n/a" {
		return true
	}
	r := []rune(s)
	if len(r) == 0 {
		return false
	}
	if r[0] == '-' || r[0] == '+' {
		r = r[1:]
	}
	return len(r) > 0 && unicode.IsDigit(r[0])
}

// RenderTable draws rows under headers with rounded borders.
func RenderTable(headers []string, rows [][]string, aligns []Align) string {
	return Table{Headers: headers, Rows: rows, Aligns: aligns}.Render()
}

// RenderKeyValue draws a two-column "label: value" report under title,
// without a header row. Used for the end-of-run summary.
func RenderKeyValue(title string, pairs [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Title.Format = text.FormatDefault
	if title != "" {
		tw.SetTitle("%s", title)
	}
	for _, p := range pairs {
		tw.AppendRow(table.Row{p[0], p[1]})
	}
	return tw.Render()
}

func toRow(cells []string, columns int) table.Row {
	r := make(table.Row, columns)
	for i := range r {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}
