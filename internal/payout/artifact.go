package payout

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// writePayoutFile produces the weekly settlement artifact, keyed by the
// Monday of the settlement week. The date renders as MM-DD-YYYY in the file
// name since slashes cannot appear there.
func writePayoutFile(dir string, now time.Time, result *Result, allDelivered bool) error {
	if dir == "" {
		dir = "weekly_payouts"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("Member: Payout gold\n")
	for _, mp := range result.Members {
		fmt.Fprintf(&b, "%s: %s gold\n", mp.DisplayName, mp.Total.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nPm Sent: %t\n", allDelivered)
	b.WriteString("\nBreakdown\n")
	fmt.Fprintf(&b, "War Token Payout: %s gold\n", result.Breakdown.War.StringFixed(2))
	fmt.Fprintf(&b, "Leadership Token Payout: %s gold\n", result.Breakdown.Leadership.StringFixed(2))
	fmt.Fprintf(&b, "Competitive Token Payout: %s gold\n", result.Breakdown.Competitive.StringFixed(2))

	construct := mondayOf(now).Format("01-02-2006")
	filename := filepath.Join(dir, fmt.Sprintf("monday_payout_%s.txt", construct))
	if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
		return err
	}
	log.Printf("Payout file %q created", filename)
	return nil
}
