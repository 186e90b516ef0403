package app

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"community-pulse/internal/history"
	"community-pulse/internal/temporal"
)

// Export renders historical snapshots as CSV and/or a PNG chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	records, closeRecords, err := a.openRecords(ctx)
	if err != nil {
		return err
	}
	if closeRecords != nil {
		defer closeRecords()
	}
	store := history.NewStore(records, a.Logger)

	end := temporal.Today(nil)
	if opts.To != nil {
		end = *opts.To
	}
	start := end.AddDays(-a.Config.Retention.Days)
	if opts.From != nil {
		start = *opts.From
	}
	if !start.Before(end) && start != end {
		return errors.New("from must not be after to")
	}

	if opts.CSVPath != "" {
		csvText, csvErr := store.ExportCSV(ctx, start, end)
		if csvErr != nil {
			return csvErr
		}
		if csvText == history.NoDataSentinel {
			a.Logger.Info().Msg("no snapshots found for export window")
		}
		if err := writeFile(opts.CSVPath, csvText); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		snaps, rangeErr := store.Range(ctx, start, end)
		if rangeErr != nil {
			return rangeErr
		}
		if len(snaps) == 0 {
			a.Logger.Info().Msg("no snapshots found; skipping PNG")
			return nil
		}
		downsampled := downsampleSnapshots(snaps, opts.MaxPoints)
		if err := writeSnapshotsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleSnapshots(snaps []history.Snapshot, max int) []history.Snapshot {
	if max <= 0 || len(snaps) <= max {
		return snaps
	}

	result := make([]history.Snapshot, 0, max)
	step := float64(len(snaps)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(snaps) {
			idx = len(snaps) - 1
		}
		result = append(result, snaps[idx])
	}
	return result
}

func writeSnapshotsPNG(path string, snaps []history.Snapshot) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(snaps))
	members := make([]float64, len(snaps))
	capacity := make([]float64, len(snaps))

	for i, snap := range snaps {
		x[i] = snap.Date.Time(time.UTC)
		members[i] = float64(snap.MemberCount)
		capacity[i] = snap.TotalCapacity.InexactFloat64()
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Members",
		},
		YAxisSecondary: chart.YAxis{
			Name: "Capacity (BTC)",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Members",
				XValues: x,
				YValues: members,
			},
			chart.TimeSeries{
				Name:    "Capacity (BTC)",
				XValues: x,
				YValues: capacity,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func writeFile(path, content string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
