// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"time"

	"github.com/fatih/color"

	"github.com/example/safecase/internal/core/checklist"
)

const rule = "────────────────────────────────────────────────────────────────"

func okMark() string      { return color.New(color.FgGreen).Sprint("✓") }
func missingMark() string { return color.New(color.FgRed).Sprint("✗") }
func idleMark() string    { return color.New(color.FgHiBlack).Sprint("·") }

// statusBadge colors a checklist status.
func statusBadge(s checklist.Status) string {
	switch s {
	case checklist.StatusCompleted:
		return color.New(color.FgHiGreen).Sprint(s)
	case checklist.StatusInProgress:
		return color.New(color.FgYellow).Sprint(s)
	}
	return color.New(color.FgHiBlack).Sprint(s)
}

func pendingMarker(role checklist.Role) string {
	return color.New(color.FgHiMagenta).Sprintf("[%s review pending]", role)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
