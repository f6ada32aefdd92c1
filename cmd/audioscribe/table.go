package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"audioscribe/internal/queue"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableColumn pairs a header with the alignment of its cells. Numeric
// columns (counts, durations, bitrates) align right.
type tableColumn struct {
	header string
	align  columnAlignment
}

func renderTable(columns []tableColumn, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	for i, column := range columns {
		header[i] = column.header
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, len(columns))
	for i, column := range columns {
		align := text.AlignLeft
		if column.align == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// statusCell renders a job status for table output, colored to match the
// status lines when the destination is a terminal.
func statusCell(status queue.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	color := ""
	switch status {
	case queue.StatusCompleted, queue.StatusVerified:
		color = ansiGreen
	case queue.StatusFailed:
		color = ansiRed
	case queue.StatusReview:
		color = ansiYellow
	case queue.StatusDownloading, queue.StatusVerifying:
		color = ansiBlue
	}
	if color == "" {
		return string(status)
	}
	return color + string(status) + ansiReset
}
