package app

import (
	"fmt"
	"os"
	"time"

	"community-pulse/internal/expiry"
	"community-pulse/internal/notify"
)

// CheckExpiry runs the credential expiry check once and prints the result.
// The daily dedup state is not consulted or updated; this is a read-only
// inspection.
func (a *App) CheckExpiry() error {
	thresholds := a.Config.Expiry.WarningDays
	result, err := expiry.Check(a.Config.Expiry.Date, thresholds, time.Now())
	if err != nil {
		return err
	}

	if !result.ShouldWarn {
		fmt.Fprintf(os.Stdout, "no warning due: %d day(s) until expiry (urgency %s)\n", result.DaysUntil, result.Urgency)
		return nil
	}

	fmt.Fprint(os.Stdout, notify.RenderExpiry(a.Config.Expiry.Key, a.Config.Expiry.Date, result))
	return nil
}
