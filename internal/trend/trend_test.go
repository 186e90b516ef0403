package trend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"community-pulse/internal/history"
	"community-pulse/internal/temporal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeDelta(t *testing.T) {
	d := ComputeDelta(dec("110"), dec("100"))
	require.True(t, d.Absolute.Equal(dec("10")))
	require.True(t, d.Percent.Equal(dec("10")))
	require.Equal(t, BucketStrongGrowth, d.Bucket)

	d = ComputeDelta(dec("95"), dec("100"))
	require.True(t, d.Absolute.Equal(dec("-5")))
	require.True(t, d.Percent.Equal(dec("-5")))
	require.Equal(t, BucketDecline, d.Bucket)
}

func TestComputeDeltaZeroPrevious(t *testing.T) {
	// Zero reference: any growth reads as +100%, no movement as 0%.
	d := ComputeDelta(dec("10"), decimal.Zero)
	require.True(t, d.Percent.Equal(dec("100")))
	require.Equal(t, BucketStrongGrowth, d.Bucket)

	d = ComputeDelta(decimal.Zero, decimal.Zero)
	require.True(t, d.Percent.IsZero())
	require.Equal(t, BucketFlat, d.Bucket)
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		percent string
		want    Bucket
	}{
		{"5.01", BucketStrongGrowth},
		{"5", BucketGrowth},
		{"0.1", BucketGrowth},
		{"0", BucketFlat},
		{"-0.1", BucketDecline},
		{"-5", BucketDecline},
		{"-5.01", BucketStrongDecline},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(dec(tc.percent)), "Classify(%s)", tc.percent)
	}
}

func TestAnalyzeMissingSnapshots(t *testing.T) {
	snap := &history.Snapshot{MemberCount: 100}

	a := Analyze(nil, snap)
	require.False(t, a.Available)
	require.Equal(t, ReasonNoCurrent, a.Reason)

	a = Analyze(snap, nil)
	require.False(t, a.Available)
	require.Equal(t, ReasonNoPrevious, a.Reason)

	a = Analyze(snap, snap)
	require.True(t, a.Available)
	require.Empty(t, a.Reason)
}

func TestReporterWeekly(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(history.NewMemoryStore(), zerolog.Nop())
	today := temporal.Today(nil)

	put := func(date temporal.Date, members, channels int64, capacity string) {
		require.NoError(t, store.Put(ctx, history.Snapshot{
			Date:          date,
			Timestamp:     date.Time(time.UTC),
			MemberCount:   members,
			TotalChannels: channels,
			TotalCapacity: dec(capacity),
			Source:        "api",
		}))
	}

	put(today.AddDays(-7), 90, 45, "9.0")
	put(today, 100, 45, "9.9")

	rep, err := NewReporter(store).Report(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "weekly", rep.PeriodLabel)
	require.Equal(t, 7, rep.LookbackDays)
	require.NotNil(t, rep.Current)
	require.True(t, rep.Analysis.Available)

	require.True(t, rep.Analysis.Members.Absolute.Equal(dec("10")))
	require.Equal(t, BucketStrongGrowth, rep.Analysis.Members.Bucket)
	require.Equal(t, BucketFlat, rep.Analysis.Channels.Bucket)
	require.Equal(t, BucketStrongGrowth, rep.Analysis.Capacity.Bucket)
}

func TestReporterMissingReference(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(history.NewMemoryStore(), zerolog.Nop())
	today := temporal.Today(nil)

	require.NoError(t, store.Put(ctx, history.Snapshot{
		Date:          today,
		Timestamp:     today.Time(time.UTC),
		MemberCount:   100,
		TotalCapacity: decimal.Zero,
	}))

	rep, err := NewReporter(store).Report(ctx, 30)
	require.NoError(t, err)
	require.Equal(t, "monthly", rep.PeriodLabel)
	require.False(t, rep.Analysis.Available)
	require.Equal(t, ReasonNoPrevious, rep.Analysis.Reason)
	require.NotNil(t, rep.Current)
}

func TestPeriodLabel(t *testing.T) {
	require.Equal(t, "daily", periodLabel(1))
	require.Equal(t, "annual", periodLabel(365))
	require.Equal(t, "14-day", periodLabel(14))
}
