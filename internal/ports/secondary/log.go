package secondary

import (
	"context"
	"time"
)

// LogWriter defines the interface for writing audit log entries.
// Implementations extract actor and facility from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error
}

// AuditLogRepository persists checklist audit events.
type AuditLogRepository interface {
	// Create persists a new audit event.
	Create(ctx context.Context, event *AuditEventRecord) error

	// List retrieves audit events matching the given filters, oldest first.
	List(ctx context.Context, filters AuditFilters) ([]*AuditEventRecord, error)
}

// AuditEventRecord represents one audit event as stored in persistence.
type AuditEventRecord struct {
	ID         string
	FacilityID string
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  time.Time
}

// AuditFilters contains filter options for querying audit events.
type AuditFilters struct {
	FacilityID string
	EntityID   string
	Limit      int
}
