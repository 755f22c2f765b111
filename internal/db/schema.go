package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh safecase installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(). If repository code references a column that
// doesn't exist here, tests fail immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run `make test` to verify alignment
//
// # Timestamps
//
// Checklist timestamps are TEXT in a fixed-width UTC layout (see
// adapters/sqlite.TimeLayout) so that ORDER BY on the column is chronological.
const SchemaSQL = `
-- Facilities and their feature flags (owned by facility administration)
CREATE TABLE IF NOT EXISTS facilities (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS facility_settings (
	facility_id TEXT PRIMARY KEY,
	enable_timeout_debrief INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (facility_id) REFERENCES facilities(id)
);

-- Surgical cases (owned by the case lifecycle; read-only here)
CREATE TABLE IF NOT EXISTS cases (
	id TEXT PRIMARY KEY,
	facility_id TEXT NOT NULL,
	procedure_name TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 0,
	is_cancelled INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (facility_id) REFERENCES facilities(id)
);

CREATE INDEX IF NOT EXISTS idx_cases_facility ON cases(facility_id);

-- Operating rooms
CREATE TABLE IF NOT EXISTS rooms (
	id TEXT PRIMARY KEY,
	facility_id TEXT NOT NULL,
	name TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	FOREIGN KEY (facility_id) REFERENCES facilities(id)
);

-- Staff display names
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL
);

-- Checklist templates: one per (facility, type), never deleted
CREATE TABLE IF NOT EXISTS checklist_templates (
	id TEXT PRIMARY KEY,
	facility_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('TIMEOUT', 'DEBRIEF')),
	name TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	current_version_id TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE(facility_id, type)
);

-- Immutable template versions
CREATE TABLE IF NOT EXISTS checklist_template_versions (
	id TEXT PRIMARY KEY,
	template_id TEXT NOT NULL,
	version_number INTEGER NOT NULL,
	items_json TEXT NOT NULL,
	signatures_json TEXT NOT NULL,
	created_by TEXT,
	created_at TEXT NOT NULL,
	UNIQUE(template_id, version_number),
	FOREIGN KEY (template_id) REFERENCES checklist_templates(id)
);

-- Checklist instances: one per (case, type)
CREATE TABLE IF NOT EXISTS checklist_instances (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL,
	facility_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('TIMEOUT', 'DEBRIEF')),
	template_version_id TEXT NOT NULL,
	room_id TEXT,
	status TEXT NOT NULL CHECK(status IN ('IN_PROGRESS', 'COMPLETED')) DEFAULT 'IN_PROGRESS',
	created_by TEXT,
	started_at TEXT NOT NULL,
	completed_at TEXT,
	pending_scrub_review INTEGER NOT NULL DEFAULT 0,
	scrub_review_completed_at TEXT,
	pending_surgeon_review INTEGER NOT NULL DEFAULT 0,
	surgeon_review_completed_at TEXT,
	UNIQUE(case_id, type),
	FOREIGN KEY (template_version_id) REFERENCES checklist_template_versions(id)
);

CREATE INDEX IF NOT EXISTS idx_checklist_instances_facility ON checklist_instances(facility_id);
CREATE INDEX IF NOT EXISTS idx_checklist_instances_pending ON checklist_instances(facility_id, type, pending_scrub_review, pending_surgeon_review);

-- Append-only response facts; seq breaks completed_at ties
CREATE TABLE IF NOT EXISTS checklist_responses (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	instance_id TEXT NOT NULL,
	item_key TEXT NOT NULL,
	value TEXT NOT NULL,
	actor_id TEXT,
	completed_at TEXT NOT NULL,
	FOREIGN KEY (instance_id) REFERENCES checklist_instances(id)
);

CREATE INDEX IF NOT EXISTS idx_checklist_responses_key ON checklist_responses(instance_id, item_key, completed_at);

-- Append-only signature facts: one per (instance, role)
CREATE TABLE IF NOT EXISTS checklist_signatures (
	id TEXT PRIMARY KEY,
	instance_id TEXT NOT NULL,
	role TEXT NOT NULL,
	actor_id TEXT,
	method TEXT NOT NULL DEFAULT 'LOGIN',
	signed_at TEXT NOT NULL,
	UNIQUE(instance_id, role),
	FOREIGN KEY (instance_id) REFERENCES checklist_instances(id)
);

-- Audit events
CREATE TABLE IF NOT EXISTS checklist_events (
	id TEXT PRIMARY KEY,
	facility_id TEXT,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checklist_events_entity ON checklist_events(entity_id);
CREATE INDEX IF NOT EXISTS idx_checklist_events_facility ON checklist_events(facility_id);
`

// InitSchema creates the schema on a fresh database, or brings an existing
// one up to date through RunMigrations.
func InitSchema(database *sql.DB) error {
	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		return RunMigrations(database)
	}

	// Completely fresh install - create the current schema directly and
	// mark every migration as applied
	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
