package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"community-pulse/internal/expiry"
	"community-pulse/internal/schedule"
	"community-pulse/internal/trend"
)

// RenderReport turns a trend report into the message text posted for one
// category.
func RenderReport(cat schedule.Category, rep trend.Report) string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("[Community Pulse] %s update\n", rep.PeriodLabel))

	if !rep.Analysis.Available {
		b.WriteString(fmt.Sprintf("Trend unavailable: %s\n", rep.Analysis.Reason))
		if rep.Current != nil {
			writeCurrentOnly(&b, rep)
		}
		return b.String()
	}

	b.WriteString(metricLine("Members", rep.Analysis.Members, 0))
	b.WriteString(metricLine("Channels", rep.Analysis.Channels, 0))
	b.WriteString(metricLine("Capacity (BTC)", rep.Analysis.Capacity, 2))
	if rep.Current != nil && rep.Current.BlockHeight != nil {
		b.WriteString(fmt.Sprintf("Block height: %d\n", *rep.Current.BlockHeight))
	}
	b.WriteString(fmt.Sprintf("Trend: %s over %d days\n", rep.Analysis.Members.Bucket, rep.LookbackDays))
	return b.String()
}

func writeCurrentOnly(b *strings.Builder, rep trend.Report) {
	b.WriteString(fmt.Sprintf("Members: %d\n", rep.Current.MemberCount))
	b.WriteString(fmt.Sprintf("Channels: %d\n", rep.Current.TotalChannels))
	b.WriteString(fmt.Sprintf("Capacity: %s BTC\n", rep.Current.TotalCapacity.StringFixed(2)))
}

func metricLine(label string, d trend.Delta, places int32) string {
	return fmt.Sprintf("%s: %s (%s, %s%%)\n",
		label,
		d.Current.StringFixed(places),
		signed(d.Absolute, places),
		signed(d.Percent, 2),
	)
}

func signed(v decimal.Decimal, places int32) string {
	s := v.StringFixed(places)
	if v.Sign() >= 0 {
		return "+" + s
	}
	return s
}

// RenderExpiry turns an expiry check result into warning text.
func RenderExpiry(key, expiryDate string, res expiry.Result) string {
	b := strings.Builder{}
	b.WriteString("[Community Pulse] credential expiry warning\n")
	b.WriteString(fmt.Sprintf("Credential: %s\n", key))
	b.WriteString(fmt.Sprintf("Expires: %s\n", expiryDate))
	if res.Urgency == expiry.UrgencyExpired {
		b.WriteString(fmt.Sprintf("EXPIRED %d day(s) ago -- rotate immediately\n", -res.DaysUntil))
	} else {
		b.WriteString(fmt.Sprintf("Days remaining: %d\n", res.DaysUntil))
	}
	b.WriteString(fmt.Sprintf("Urgency: %s\n", res.Urgency))
	return b.String()
}
