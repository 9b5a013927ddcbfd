package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/use-agent/yokatlas/models"
	"github.com/use-agent/yokatlas/scraper"
)

// printSummary renders one row per category followed by a total.
func printSummary(w io.Writer, result *scraper.Result, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "Pages", "Records", "Duration", "Error"})

	for _, cr := range result.Categories {
		errText := ""
		if cr.Err != nil {
			errText = models.CodeOf(cr.Err)
			if errText == "" {
				errText = cr.Err.Error()
			}
		}
		t.AppendRow(table.Row{cr.Category, cr.Pages, len(cr.Records), formatElapsed(cr.Duration), errText})
	}

	t.AppendFooter(table.Row{"Total", "", len(result.Records), formatElapsed(elapsed), ""})
	t.SetStyle(table.StyleRounded)
	// Durations must keep their lower-case units.
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
}

// formatElapsed renders d as "Xm Ys Zms".
func formatElapsed(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%dm %ds %dms", ms/60000, (ms%60000)/1000, ms%1000)
}
