package main

import (
	"io"
	"path"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pressly/goose/v3"
)

func writeStatus(w io.Writer, statuses []*goose.MigrationStatus) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Version", "Migration", "Applied"})
	for _, st := range statuses {
		if st == nil || st.Source == nil {
			continue
		}
		applied := "pending"
		if st.State == goose.StateApplied {
			applied = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		row := []string{strconv.FormatInt(st.Source.Version, 10), path.Base(st.Source.Path), applied}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
