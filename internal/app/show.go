package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Show prints recent snapshots.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	records, closeRecords, err := a.openRecords(ctx)
	if err != nil {
		return err
	}
	if closeRecords != nil {
		defer closeRecords()
	}

	snaps, err := records.Recent(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tCaptured (UTC)\tMembers\tChannels\tCapacity (BTC)\tHeight\tSource")

	for _, snap := range snaps {
		height := ""
		if snap.BlockHeight != nil {
			height = fmt.Sprintf("%d", *snap.BlockHeight)
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			snap.Date.String(),
			snap.Timestamp.UTC().Format(time.RFC3339),
			snap.MemberCount,
			snap.TotalChannels,
			snap.TotalCapacity.StringFixed(2),
			height,
			snap.Source,
		)
	}

	writer.Flush()
	return nil
}
