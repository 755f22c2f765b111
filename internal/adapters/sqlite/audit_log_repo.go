package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/safecase/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create persists a new audit event.
func (r *AuditLogRepository) Create(ctx context.Context, event *secondary.AuditEventRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO checklist_events (id, facility_id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		nullString(event.FacilityID),
		nullString(event.ActorID),
		event.EntityType,
		event.EntityID,
		event.Action,
		nullString(event.FieldName),
		nullString(event.OldValue),
		nullString(event.NewValue),
		formatTime(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create audit event: %w", err)
	}
	return nil
}

// List retrieves audit events matching the given filters, oldest first.
func (r *AuditLogRepository) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditEventRecord, error) {
	query := `SELECT id, facility_id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value, created_at
		FROM checklist_events WHERE 1=1`
	args := []any{}

	if filters.FacilityID != "" {
		query += " AND facility_id = ?"
		args = append(args, filters.FacilityID)
	}

	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}

	query += " ORDER BY created_at, rowid"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.AuditEventRecord
	for rows.Next() {
		var (
			e          secondary.AuditEventRecord
			facilityID sql.NullString
			actorID    sql.NullString
			fieldName  sql.NullString
			oldValue   sql.NullString
			newValue   sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &facilityID, &actorID, &e.EntityType, &e.EntityID, &e.Action,
			&fieldName, &oldValue, &newValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.FacilityID = facilityID.String
		e.ActorID = actorID.String
		e.FieldName = fieldName.String
		e.OldValue = oldValue.String
		e.NewValue = newValue.String
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// Ensure AuditLogRepository implements the interface
var _ secondary.AuditLogRepository = (*AuditLogRepository)(nil)
