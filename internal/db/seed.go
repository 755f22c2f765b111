package db

import (
	"database/sql"
	"fmt"
)

// FixtureFacilityIDs lists the facilities created by SeedFixtures.
var FixtureFacilityIDs = []string{"FAC-001", "FAC-002"}

// FixtureAdminID is the fixture user credited with seeded templates.
const FixtureAdminID = "USR-001"

// SeedFixtures populates the collaborator tables (facilities, rooms, staff,
// cases) with development fixtures. Checklist templates are published through
// the template service so they get real versions.
func SeedFixtures(database *sql.DB) error {
	facilities := []struct {
		id, name string
		enabled  bool
	}{
		{"FAC-001", "Riverside Surgery Center", true},
		{"FAC-002", "Hillcrest Ambulatory", false},
	}
	for _, f := range facilities {
		if _, err := database.Exec(
			"INSERT INTO facilities (id, name) VALUES (?, ?)",
			f.id, f.name,
		); err != nil {
			return fmt.Errorf("seed facilities: %w", err)
		}
		if _, err := database.Exec(
			"INSERT INTO facility_settings (facility_id, enable_timeout_debrief) VALUES (?, ?)",
			f.id, f.enabled,
		); err != nil {
			return fmt.Errorf("seed facility settings: %w", err)
		}
	}

	rooms := []struct {
		id, facilityID, name string
		active               bool
	}{
		{"OR-1", "FAC-001", "OR 1", true},
		{"OR-2", "FAC-001", "OR 2", true},
		{"OR-3", "FAC-001", "OR 3 (renovation)", false},
		{"OR-A", "FAC-002", "Suite A", true},
	}
	for _, r := range rooms {
		if _, err := database.Exec(
			"INSERT INTO rooms (id, facility_id, name, is_active) VALUES (?, ?, ?, ?)",
			r.id, r.facilityID, r.name, r.active,
		); err != nil {
			return fmt.Errorf("seed rooms: %w", err)
		}
	}

	users := []struct{ id, name string }{
		{"USR-001", "Dana Whitfield, RN"},
		{"USR-002", "Sam Okafor, CST"},
		{"USR-003", "Dr. Priya Raman"},
		{"USR-004", "Dr. Tomas Lindqvist"},
	}
	for _, u := range users {
		if _, err := database.Exec(
			"INSERT INTO users (id, display_name) VALUES (?, ?)",
			u.id, u.name,
		); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	cases := []struct {
		id, facilityID, procedure string
		active, cancelled         bool
	}{
		{"CASE-001", "FAC-001", "Laparoscopic cholecystectomy", true, false},
		{"CASE-002", "FAC-001", "Right knee arthroscopy", true, false},
		{"CASE-003", "FAC-001", "Carpal tunnel release", false, false},
		{"CASE-004", "FAC-001", "Inguinal hernia repair", true, true},
		{"CASE-005", "FAC-002", "Cataract extraction", true, false},
	}
	for _, c := range cases {
		if _, err := database.Exec(
			"INSERT INTO cases (id, facility_id, procedure_name, is_active, is_cancelled) VALUES (?, ?, ?, ?, ?)",
			c.id, c.facilityID, c.procedure, c.active, c.cancelled,
		); err != nil {
			return fmt.Errorf("seed cases: %w", err)
		}
	}

	return nil
}
