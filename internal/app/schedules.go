package app

import (
	"fmt"
	"os"
	"text/tabwriter"

	"community-pulse/internal/schedule"
)

// Schedules prints the derived cron expression per category and channel,
// followed by any conflicts.
func (a *App) Schedules() error {
	rules := a.Config.ScheduleRules()

	generated, err := schedule.GenerateAll(rules)
	if err != nil {
		return err
	}
	if len(generated) == 0 {
		fmt.Fprintln(os.Stdout, "no enabled schedules")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Category\tChannel\tCron")
	for _, cat := range schedule.Categories() {
		for channel, expr := range generated[cat] {
			fmt.Fprintf(writer, "%s\t%s\t%s\n", cat, channel, expr)
		}
	}
	writer.Flush()

	conflicts := schedule.DetectConflicts(generated)
	if len(conflicts) == 0 {
		fmt.Fprintln(os.Stdout, "\nno conflicts")
		return nil
	}

	fmt.Fprintln(os.Stdout, "\nconflicts:")
	for _, c := range conflicts {
		fmt.Fprintf(os.Stdout, "  %s and %s both post to %q at %q\n", c.First, c.Second, c.Channel, c.Expr)
	}
	return nil
}
