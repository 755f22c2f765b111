package primary

import (
	"context"
	"time"
)

// LogService defines the primary port for reading the checklist audit log.
type LogService interface {
	// ListLogs retrieves audit entries matching the given filters, oldest first.
	ListLogs(ctx context.Context, filters LogFilters) ([]*LogEntry, error)
}

// LogFilters contains filter options for querying the audit log.
type LogFilters struct {
	FacilityID string
	EntityID   string
	Limit      int
}

// LogEntry represents one audit event at the port boundary.
type LogEntry struct {
	ID         string    `json:"id"`
	FacilityID string    `json:"facilityId,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`
	FieldName  string    `json:"fieldName,omitempty"`
	OldValue   string    `json:"oldValue,omitempty"`
	NewValue   string    `json:"newValue,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
