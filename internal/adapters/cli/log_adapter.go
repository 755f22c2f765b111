package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/safecase/internal/ports/primary"
)

// LogAdapter prints the checklist audit trail.
type LogAdapter struct {
	service primary.LogService
	out     io.Writer
}

// NewLogAdapter creates a new LogAdapter with the given service.
func NewLogAdapter(service primary.LogService, out io.Writer) *LogAdapter {
	return &LogAdapter{
		service: service,
		out:     out,
	}
}

// List prints audit entries matching filters.
func (a *LogAdapter) List(ctx context.Context, filters primary.LogFilters) error {
	entries, err := a.service.ListLogs(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list audit log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No audit entries")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-10s %-7s %s/%s", formatTime(e.CreatedAt), orDash(e.ActorID), e.Action, e.EntityType, e.EntityID)
		if e.FieldName != "" {
			line += fmt.Sprintf("  %s: %q -> %q", e.FieldName, e.OldValue, e.NewValue)
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}
