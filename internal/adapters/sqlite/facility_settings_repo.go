package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/safecase/internal/ports/secondary"
)

// FacilitySettingsRepository implements secondary.FacilitySettingsProvider with SQLite.
type FacilitySettingsRepository struct {
	db *sql.DB
}

// NewFacilitySettingsRepository creates a new SQLite facility settings repository.
func NewFacilitySettingsRepository(db *sql.DB) *FacilitySettingsRepository {
	return &FacilitySettingsRepository{db: db}
}

// GetEnableTimeoutDebrief reads the feature flag. Facilities without a
// settings row have the feature off.
func (r *FacilitySettingsRepository) GetEnableTimeoutDebrief(ctx context.Context, facilityID string) (bool, error) {
	var enabled bool
	err := r.db.QueryRowContext(ctx,
		`SELECT enable_timeout_debrief FROM facility_settings WHERE facility_id = ?`,
		facilityID,
	).Scan(&enabled)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get facility settings: %w", err)
	}
	return enabled, nil
}

// SetEnableTimeoutDebrief turns the feature on or off for a facility.
func (r *FacilitySettingsRepository) SetEnableTimeoutDebrief(ctx context.Context, facilityID string, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO facility_settings (facility_id, enable_timeout_debrief) VALUES (?, ?)
		 ON CONFLICT(facility_id) DO UPDATE SET enable_timeout_debrief = excluded.enable_timeout_debrief, updated_at = CURRENT_TIMESTAMP`,
		facilityID, enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to update facility settings: %w", err)
	}
	return nil
}

// Ensure FacilitySettingsRepository implements the interface
var _ secondary.FacilitySettingsProvider = (*FacilitySettingsRepository)(nil)
