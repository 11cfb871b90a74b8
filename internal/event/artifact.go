package event

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// writeEventFile produces the human-readable per-event summary.
func writeEventFile(dir, eventName string, duration time.Duration, awarded []awardResult) error {
	if dir == "" {
		dir = "event_files"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Event Name: %s\n", eventName)
	fmt.Fprintf(&b, "Event Duration: %.0f seconds\n\n", duration.Seconds())
	for _, award := range awarded {
		fmt.Fprintf(&b, "Member ID: %s\n", award.MemberID)
		fmt.Fprintf(&b, "Member Nickname: %s\n", award.DisplayName)
		fmt.Fprintf(&b, "Token Earned: %s\n", award.TokenType)
		fmt.Fprintf(&b, "Start Balance: %d\n", award.StartBalance)
		fmt.Fprintf(&b, "End Balance: %d\n", award.EndBalance)
		fmt.Fprintf(&b, "Time Spent in Event: %.0f seconds\n\n", award.Duration.Seconds())
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s_event.txt", sanitizeFilename(eventName)))
	if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
		return err
	}
	log.Printf("Event file %q created", filename)
	return nil
}

// sanitizeFilename keeps event names safe to use as file names.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
