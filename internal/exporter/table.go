package exporter

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"fraudscope/pkg/contracts/domain"
)

// RenderTable writes the first n rows of t to w as a console table with a
// leading row index. Missing cells print as NaN.
func RenderTable(w io.Writer, t *domain.Table, n int) error {
	if t == nil {
		_, err := io.WriteString(w, "(empty table)\n")
		return err
	}

	head := t.Head(n)
	tableHeaders := table.Row{""}
	for _, name := range head.ColumnNames() {
		tableHeaders = append(tableHeaders, name)
	}

	var tableRows []table.Row
	for i := 0; i < head.NumRows(); i++ {
		row := table.Row{i}
		for _, v := range head.Row(i) {
			row = append(row, v.String())
		}
		tableRows = append(tableRows, row)
	}

	tw := table.NewWriter()
	tw.AppendHeader(tableHeaders)
	tw.AppendRows(tableRows)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	tw.Style().Options.DrawBorder = false
	tw.SuppressTrailingSpaces()
	tw.SetCaption("[%d rows x %d columns]", t.NumRows(), t.NumColumns())

	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}
