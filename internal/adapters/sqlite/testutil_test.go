// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/safecase/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedFacility inserts a facility with its feature flag.
func seedFacility(t *testing.T, db *sql.DB, id string, enabled bool) string {
	t.Helper()
	if id == "" {
		id = "FAC-001"
	}
	if _, err := db.Exec("INSERT INTO facilities (id, name) VALUES (?, ?)", id, "Test Facility "+id); err != nil {
		t.Fatalf("failed to seed facility: %v", err)
	}
	if _, err := db.Exec("INSERT INTO facility_settings (facility_id, enable_timeout_debrief) VALUES (?, ?)", id, enabled); err != nil {
		t.Fatalf("failed to seed facility settings: %v", err)
	}
	return id
}

// seedCase inserts a case and returns its ID.
func seedCase(t *testing.T, db *sql.DB, id, facilityID string, active, cancelled bool) string {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO cases (id, facility_id, procedure_name, is_active, is_cancelled) VALUES (?, ?, 'Test procedure', ?, ?)",
		id, facilityID, active, cancelled,
	)
	if err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	return id
}

// seedRoom inserts an operating room and returns its ID.
func seedRoom(t *testing.T, db *sql.DB, id, facilityID, name string, active bool) string {
	t.Helper()
	_, err := db.Exec("INSERT INTO rooms (id, facility_id, name, is_active) VALUES (?, ?, ?, ?)", id, facilityID, name, active)
	if err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}
	return id
}

// seedUser inserts a staff member.
func seedUser(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO users (id, display_name) VALUES (?, ?)", id, name); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

// seedTemplateVersion inserts a template with one current version and
// returns the version ID.
func seedTemplateVersion(t *testing.T, db *sql.DB, templateID, versionID, facilityID, typ string) string {
	t.Helper()
	const at = "2026-03-01T00:00:00.000000000Z"
	_, err := db.Exec(
		`INSERT INTO checklist_templates (id, facility_id, type, name, is_active, current_version_id, created_at, updated_at)
		 VALUES (?, ?, ?, 'Seeded', 1, ?, ?, ?)`,
		templateID, facilityID, typ, versionID, at, at,
	)
	if err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}
	_, err = db.Exec(
		`INSERT INTO checklist_template_versions (id, template_id, version_number, items_json, signatures_json, created_at)
		 VALUES (?, ?, 1, '[{"key":"sponge_count","label":"Sponge count","kind":"text","required":true}]', '[{"role":"CIRCULATOR","required":true}]', ?)`,
		versionID, templateID, at,
	)
	if err != nil {
		t.Fatalf("failed to seed template version: %v", err)
	}
	return versionID
}

// seedInstance inserts an in-progress checklist instance and returns its ID.
func seedInstance(t *testing.T, db *sql.DB, id, caseID, facilityID, typ, versionID string) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO checklist_instances (id, case_id, facility_id, type, template_version_id, status, started_at)
		 VALUES (?, ?, ?, ?, ?, 'IN_PROGRESS', '2026-03-02T08:00:00.000000000Z')`,
		id, caseID, facilityID, typ, versionID,
	)
	if err != nil {
		t.Fatalf("failed to seed instance: %v", err)
	}
	return id
}
