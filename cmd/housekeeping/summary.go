package main

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/angelmondragon/localdrop-backend/internal/cron"
)

func writeSummary(w io.Writer, results []cron.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Job", "Outcome", "Rows", "Duration"})
	for _, result := range results {
		row := []string{
			result.Job,
			outcome(result),
			strconv.FormatInt(result.Rows, 10),
			result.Duration.Round(time.Millisecond).String(),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeSchedule(w io.Writer, entries []cron.Entry) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Job", "Schedule", "Next"})
	now := time.Now()
	for _, entry := range entries {
		row := []string{entry.Job.Name(), entry.Spec, entry.Next(now).Format(time.RFC3339)}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func outcome(result cron.Result) string {
	switch {
	case result.Err != nil:
		return "failed: " + result.Err.Error()
	case result.Locked:
		return "locked"
	case result.Skipped:
		return "skipped"
	default:
		return "ok"
	}
}
