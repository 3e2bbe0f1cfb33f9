package jobs

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Succeeded reports whether the sweep ran to completion without entity failures.
func (r *SweepReport) Succeeded() bool {
	return r.Aborted == "" && r.Failed == 0
}

// RenderReports writes a summary table for reports followed by any per-entity errors.
func RenderReports(w io.Writer, reports []*SweepReport) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Job", "Scanned", "Changed", "Notified", "Skipped", "Failed", "Duration", "Result"})
	table.SetAutoFormatHeaders(false)

	for _, r := range reports {
		table.Append([]string{
			r.Job,
			strconv.Itoa(r.Scanned),
			strconv.Itoa(r.Changed),
			strconv.Itoa(r.Notified),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			r.Duration.Round(time.Millisecond).String(),
			result(r),
		})
	}
	table.Render()

	for _, r := range reports {
		if r.Aborted != "" {
			color.New(color.FgRed).Fprintf(w, "%s aborted: %s\n", r.Job, r.Aborted)
		}
		for _, e := range r.Errors {
			color.New(color.FgYellow).Fprintf(w, "%s: %s %d: %s\n", r.Job, e.Entity, e.ID, e.Error)
		}
	}
}

func result(r *SweepReport) string {
	switch {
	case r.Aborted != "":
		return color.RedString("aborted")
	case r.Failed > 0:
		return color.YellowString(fmt.Sprintf("%d failed", r.Failed))
	}
	return color.GreenString("ok")
}
